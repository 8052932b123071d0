package service

import (
	"sort"
	"unicode/utf8"

	"chyron-analysis/pkg/model"
)

// Describe 计算每个电视台的描述性统计，按电视台排序
func Describe(records []model.CleanedRecord) []model.StationSummary {
	type acc struct {
		summary   model.StationSummary
		texts     map[string]struct{}
		textRunes int64
	}
	byStation := make(map[string]*acc)
	for _, r := range records {
		a, ok := byStation[r.Station]
		if !ok {
			a = &acc{
				summary: model.StationSummary{Station: r.Station, FirstSeen: r.Timestamp, LastSeen: r.Timestamp},
				texts:   make(map[string]struct{}),
			}
			byStation[r.Station] = a
		}
		s := &a.summary
		s.Records++
		s.TotalDuration += r.Duration
		if r.Timestamp.Before(s.FirstSeen) {
			s.FirstSeen = r.Timestamp
		}
		if r.Timestamp.After(s.LastSeen) {
			s.LastSeen = r.Timestamp
		}
		a.texts[r.Text] = struct{}{}
		a.textRunes += int64(utf8.RuneCountInString(r.Text))
	}

	out := make([]model.StationSummary, 0, len(byStation))
	for _, a := range byStation {
		s := a.summary
		s.DistinctTexts = int64(len(a.texts))
		s.MeanDuration = float64(s.TotalDuration) / float64(s.Records)
		s.MeanTextLength = float64(a.textRunes) / float64(s.Records)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Station < out[j].Station
	})
	return out
}
