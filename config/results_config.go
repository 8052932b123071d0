package config

import (
	"time"

	"github.com/pkg/errors"
)

// ResultsConfig 分析结果库配置
// DSN 以 mysql:// 或 postgres:// 开头时使用对应驱动，否则视为 sqlite 文件路径
type ResultsConfig struct {
	DSN             string        `json:"dsn" yaml:"dsn"`
	Replicas        []string      `json:"replicas" yaml:"replicas"` // 只读副本 DSN
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	BatchSize       int           `json:"batchSize" yaml:"batchSize"`
}

func (r *ResultsConfig) Validate() []error {
	var errs = make([]error, 0)
	if r.DSN == "" {
		errs = append(errs, errors.Errorf("结果库 dsn 不能为空"))
	}
	if r.BatchSize <= 0 {
		errs = append(errs, errors.Errorf("结果库 batchSize 必须大于 0，当前 %d", r.BatchSize))
	}
	if r.MaxOpenConns < 0 || r.MaxIdleConns < 0 {
		errs = append(errs, errors.Errorf("结果库连接数不能为负数"))
	}
	return errs
}

func NewDefaultResultsConfig() *ResultsConfig {
	return &ResultsConfig{
		DSN:             "./data/results.db",
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
		BatchSize:       500,
	}
}
