package model

import "time"

// StationSummary 单个电视台的描述性统计
type StationSummary struct {
	Station        string    `json:"station"`
	Records        int64     `json:"records"`
	TotalDuration  int64     `json:"total_duration"`
	MeanDuration   float64   `json:"mean_duration"`
	DistinctTexts  int64     `json:"distinct_texts"`
	MeanTextLength float64   `json:"mean_text_length"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
}
