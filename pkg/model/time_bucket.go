package model

import "time"

// BucketKey 时间桶的键：电视台 + 区间起点
type BucketKey struct {
	Station string
	Start   time.Time
}

// TimeBucket 一个电视台在一个时间区间内的匹配与总体统计
type TimeBucket struct {
	Station         string    `json:"station"`
	Start           time.Time `json:"start"`
	MatchedCount    int64     `json:"matched_count"`
	MatchedDuration int64     `json:"matched_duration"`
	TotalCount      int64     `json:"total_count"`
	TotalDuration   int64     `json:"total_duration"`
}

// Key 返回桶的键
func (b TimeBucket) Key() BucketKey {
	return BucketKey{Station: b.Station, Start: b.Start}
}

// Coverage 返回匹配时长占总时长的比例。
// 总时长为 0 时表示“无数据”，ok 为 false
func (b TimeBucket) Coverage() (ratio float64, ok bool) {
	if b.TotalDuration == 0 {
		return 0, false
	}
	return float64(b.MatchedDuration) / float64(b.TotalDuration), true
}
