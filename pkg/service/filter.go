package service

import (
	"strings"
	"time"

	"chyron-analysis/pkg/model"
)

// RecordFilter 按电视台、时间范围和节目名过滤记录，零值不过滤
type RecordFilter struct {
	Stations        []string
	Start           time.Time // 闭区间，零值表示不限
	End             time.Time
	ProgramContains string // 片段 ID 子串，大小写不敏感
}

// Match 判断记录是否满足过滤条件
func (f RecordFilter) Match(r model.ChyronRecord) bool {
	if len(f.Stations) > 0 && !containsString(f.Stations, r.Station) {
		return false
	}
	if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && r.Timestamp.After(f.End) {
		return false
	}
	if f.ProgramContains != "" && !strings.Contains(strings.ToLower(r.ClipID), strings.ToLower(f.ProgramContains)) {
		return false
	}
	return true
}

// IsZero 判断是否未设置任何条件
func (f RecordFilter) IsZero() bool {
	return len(f.Stations) == 0 && f.Start.IsZero() && f.End.IsZero() && f.ProgramContains == ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
