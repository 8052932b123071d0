package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
)

// Matcher 判断文本是否命中过滤条件
type Matcher interface {
	Match(text string) bool
	String() string
}

type substringMatcher struct {
	needle string
}

// NewSubstringMatcher 大小写不敏感的子串匹配
func NewSubstringMatcher(substr string) (Matcher, error) {
	if substr == "" {
		return nil, errors.New("匹配子串不能为空")
	}
	return &substringMatcher{needle: strings.ToLower(substr)}, nil
}

func (m *substringMatcher) Match(text string) bool {
	return strings.Contains(strings.ToLower(text), m.needle)
}

func (m *substringMatcher) String() string {
	return m.needle
}

type regexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher 大小写不敏感的正则匹配，非法表达式在此处立即返回错误
func NewRegexMatcher(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, errors.New("正则表达式不能为空")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "非法正则表达式 %q", pattern)
	}
	return &regexMatcher{re: re}, nil
}

func (m *regexMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

func (m *regexMatcher) String() string {
	return m.re.String()
}

// TimelineQuery 时间桶聚合参数，Start/End 为闭区间
type TimelineQuery struct {
	Matcher  Matcher
	Interval time.Duration
	Start    time.Time
	End      time.Time
	Stations []string // 为空时使用记录中出现的全部电视台
	// MaxBuckets 输出行数（电视台 × 时间桶）上限，0 表示不限制
	MaxBuckets int
}

func (q TimelineQuery) validate() error {
	if q.Matcher == nil {
		return errors.New("缺少匹配条件")
	}
	if q.Interval <= 0 {
		return errors.Errorf("时间间隔必须大于 0，当前 %s", q.Interval)
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return errors.New("必须指定时间范围")
	}
	if q.End.Before(q.Start) {
		return errors.Errorf("时间范围结束 %s 早于开始 %s", q.End, q.Start)
	}
	if q.MaxBuckets > 0 && q.bucketsPerStation() > int64(q.MaxBuckets) {
		return errors.Errorf("时间桶过多: %s 到 %s 按 %s 划分超过上限 %d", q.Start, q.End, q.Interval, q.MaxBuckets)
	}
	return nil
}

func (q TimelineQuery) location() *time.Location {
	return q.Start.Location()
}

// bucketsPerStation 区间内墙上时间桶的个数
func (q TimelineQuery) bucketsPerStation() int64 {
	loc := q.location()
	first := floorWall(q.Start, q.Interval)
	last := floorWall(q.End.In(loc), q.Interval)
	return int64(last.Sub(first)/q.Interval) + 1
}

// wallClock 返回 t 在其时区中的墙上时间，以 UTC 表示
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func floorWall(t time.Time, interval time.Duration) time.Time {
	return wallClock(t).Truncate(interval)
}

// localStart 将墙上时间桶的起点换算回 loc 中的时刻。
// 起点落在夏令时跳过的区间时取跳变后的第一个时刻，整个桶都被跳过时返回 false。
// 夏令时结束时重复的一小时按墙上时间归入同一个桶
func localStart(wall time.Time, interval time.Duration, loc *time.Location) (time.Time, bool) {
	t := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
	if wallClock(t).Equal(wall) {
		return t, true
	}
	zoneStart, zoneEnd := t.ZoneBounds()
	next := zoneEnd
	if wallClock(t).After(wall) {
		next = zoneStart
	}
	if next.IsZero() || wallClock(next).Before(wall) || !wallClock(next).Before(wall.Add(interval)) {
		return time.Time{}, false
	}
	return next, true
}

// FloorTime 按 t 所在时区的墙上时间向下取整到 interval 的整数倍
func FloorTime(t time.Time, interval time.Duration) time.Time {
	start, _ := localStart(floorWall(t, interval), interval, t.Location())
	return start
}

// AggregateTimeline 按 (电视台, 时间桶) 统计命中与全部记录的条数和时长。
// 时间桶按 Start 所在时区的墙上时间划分，跨夏令时不会错位。
// 输出是 电视台 × 区间内全部时间桶 的完整笛卡尔积，缺失的桶补 0；
// 区间外的记录被忽略。结果按电视台、时间升序
func AggregateTimeline(records []model.CleanedRecord, q TimelineQuery) ([]model.TimeBucket, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	stations := q.Stations
	if len(stations) == 0 {
		stations = distinctStations(records)
	}
	if q.MaxBuckets > 0 && int64(len(stations))*q.bucketsPerStation() > int64(q.MaxBuckets) {
		return nil, errors.Errorf("时间桶过多: %d 个电视台 × %d 个区间超过上限 %d", len(stations), q.bucketsPerStation(), q.MaxBuckets)
	}

	loc := q.location()
	first := floorWall(q.Start, q.Interval)
	last := floorWall(q.End.In(loc), q.Interval)
	type slot struct {
		wall  time.Time
		start time.Time
	}
	var slots []slot
	for w := first; !w.After(last); w = w.Add(q.Interval) {
		if start, ok := localStart(w, q.Interval, loc); ok {
			slots = append(slots, slot{wall: w, start: start})
		}
	}

	stats := make(map[model.BucketKey]*model.TimeBucket)
	for _, r := range records {
		w := floorWall(r.Timestamp.In(loc), q.Interval)
		if w.Before(first) || w.After(last) {
			continue
		}
		key := model.BucketKey{Station: r.Station, Start: w}
		b, ok := stats[key]
		if !ok {
			b = &model.TimeBucket{}
			stats[key] = b
		}
		b.TotalCount++
		b.TotalDuration += r.Duration
		if q.Matcher.Match(r.Text) {
			b.MatchedCount++
			b.MatchedDuration += r.Duration
		}
	}

	buckets := make([]model.TimeBucket, 0, len(stations)*len(slots))
	for _, station := range stations {
		for _, sl := range slots {
			row := model.TimeBucket{Station: station, Start: sl.start}
			if b, ok := stats[model.BucketKey{Station: station, Start: sl.wall}]; ok {
				row.MatchedCount, row.MatchedDuration = b.MatchedCount, b.MatchedDuration
				row.TotalCount, row.TotalDuration = b.TotalCount, b.TotalDuration
			}
			buckets = append(buckets, row)
		}
	}
	return buckets, nil
}

// Rebucket 将细粒度的桶合并到更粗的时间窗口，只做求和不取平均。
// coarse 必须是 fine 的整数倍，窗口同样按墙上时间对齐
func Rebucket(buckets []model.TimeBucket, fine, coarse time.Duration) ([]model.TimeBucket, error) {
	if fine <= 0 || coarse <= 0 {
		return nil, errors.New("时间间隔必须大于 0")
	}
	if coarse < fine || coarse%fine != 0 {
		return nil, errors.Errorf("%s 不是 %s 的整数倍", coarse, fine)
	}

	merged := make(map[model.BucketKey]*model.TimeBucket)
	var order []model.BucketKey
	for _, b := range buckets {
		wall := floorWall(b.Start, coarse)
		key := model.BucketKey{Station: b.Station, Start: wall}
		m, ok := merged[key]
		if !ok {
			start, ok := localStart(wall, coarse, b.Start.Location())
			if !ok {
				start = b.Start
			}
			m = &model.TimeBucket{Station: b.Station, Start: start}
			merged[key] = m
			order = append(order, key)
		}
		m.MatchedCount += b.MatchedCount
		m.MatchedDuration += b.MatchedDuration
		m.TotalCount += b.TotalCount
		m.TotalDuration += b.TotalDuration
	}

	out := make([]model.TimeBucket, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Station != out[j].Station {
			return out[i].Station < out[j].Station
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func distinctStations(records []model.CleanedRecord) []string {
	seen := make(map[string]struct{})
	var stations []string
	for _, r := range records {
		if _, ok := seen[r.Station]; ok {
			continue
		}
		seen[r.Station] = struct{}{}
		stations = append(stations, r.Station)
	}
	sort.Strings(stations)
	return stations
}
