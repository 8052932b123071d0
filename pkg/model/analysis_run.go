package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	RunKindFrequency = "freq"
	RunKindLogOdds   = "logodds"
	RunKindTimeline  = "timeline"
)

// AnalysisRun 表示一次分析运行，保存在结果库中
type AnalysisRun struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"` // UUID
	Kind      string     `gorm:"size:16;index" json:"kind"`
	Params    JSONParams `gorm:"type:text" json:"params"`
	RowCount  int        `json:"row_count"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName 指定表名
func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

// WordFrequencyRow 词频结果行
type WordFrequencyRow struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	RunID     string  `gorm:"size:36;index" json:"run_id"`
	GroupKey  string  `gorm:"column:group_key;size:128" json:"group"`
	Word      string  `gorm:"size:128" json:"word"`
	Count     int64   `json:"count"`
	Frequency float64 `json:"frequency"`
}

// TableName 指定表名
func (WordFrequencyRow) TableName() string {
	return "word_frequencies"
}

// LogOddsRow 对数几率比结果行
type LogOddsRow struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	RunID  string  `gorm:"size:36;index" json:"run_id"`
	Word   string  `gorm:"size:128" json:"word"`
	CountA int64   `json:"count_a"`
	CountB int64   `json:"count_b"`
	Ratio  float64 `json:"ratio"`
}

// TableName 指定表名
func (LogOddsRow) TableName() string {
	return "log_odds_ratios"
}

// TimeBucketRow 时间桶结果行
type TimeBucketRow struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	RunID           string    `gorm:"size:36;index" json:"run_id"`
	Station         string    `gorm:"size:64" json:"station"`
	BucketStart     time.Time `json:"bucket_start"`
	MatchedCount    int64     `json:"matched_count"`
	MatchedDuration int64     `json:"matched_duration"`
	TotalCount      int64     `json:"total_count"`
	TotalDuration   int64     `json:"total_duration"`
}

// TableName 指定表名
func (TimeBucketRow) TableName() string {
	return "time_buckets"
}

// JSONParams 以 JSON 文本形式存储运行参数
type JSONParams map[string]interface{}

// Value 实现 driver.Valuer 接口
func (p JSONParams) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(map[string]interface{}(p))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan 实现 sql.Scanner 接口，非法 JSON 时保留为空
func (p *JSONParams) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(bytes, &data); err != nil {
		*p = nil
		return nil
	}
	*p = data
	return nil
}
