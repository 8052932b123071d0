package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type DuckDBConfig struct {
	DBPath    string `json:"dbPath" yaml:"dbPath"`       // DuckDB 数据库文件路径，空字符串表示内存库
	Table     string `json:"table" yaml:"table"`         // 字幕记录表名
	BatchSize int    `json:"batchSize" yaml:"batchSize"` // 每个事务写入的记录数
}

func (d *DuckDBConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.Table == "" {
		errs = append(errs, errors.Errorf("DuckDB 表名不能为空"))
	}
	if d.BatchSize <= 0 {
		errs = append(errs, errors.Errorf("DuckDB batchSize 必须大于 0，当前 %d", d.BatchSize))
	}
	if d.DBPath == "" {
		return errs
	}

	// 确保目录存在
	dir := filepath.Dir(d.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		errs = append(errs, errors.Errorf("创建 DuckDB 目录失败: %v", err))
	}

	return errs
}

func NewDefaultDuckDBConfig() *DuckDBConfig {
	return &DuckDBConfig{
		DBPath:    "./data/chyrons.duckdb",
		Table:     "chyrons",
		BatchSize: 1000,
	}
}

func (d *DuckDBConfig) DSN() string {
	return d.DBPath
}
