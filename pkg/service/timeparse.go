package service

import (
	"time"

	"chyron-analysis/pkg/model"

	"github.com/pkg/errors"
)

var timeBoundLayouts = []string{
	time.RFC3339,
	model.TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimeBound 解析命令行或查询参数中的时间。
// 只给出日期时，作为区间结束的一端 (endOfDay) 取当天最后一秒
func ParseTimeBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(model.DateLayout, value, loc); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).Add(-time.Second), nil
		}
		return t, nil
	}
	for _, layout := range timeBoundLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("无法解析时间 %q", value)
}
