package db

import (
	"database/sql"
	"sync"

	"chyron-analysis/config"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var duckDB *sql.DB
var duckDBOnce sync.Once

// OpenDuckDB 打开一个 DuckDB 连接，dbPath 为空时使用内存库
func OpenDuckDB(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "连接 duckdb 失败 %s", dbPath)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "duckdb 连接测试失败 %s", dbPath)
	}
	return conn, nil
}

// InitDuckDB 初始化全局 duckdb 连接
func InitDuckDB(cfg *config.DuckDBConfig) error {
	var err error
	duckDBOnce.Do(func() {
		duckDB, err = OpenDuckDB(cfg.DSN())
		if err != nil {
			zap.S().Errorf("%v", err)
			return
		}
		zap.S().Debugf("duckdb 初始化完成: %s", cfg.DSN())
	})
	return err
}

// GetDuckDB 获取 DuckDB 连接
func GetDuckDB() *sql.DB {
	return duckDB
}

// CloseDuckDB 关闭全局连接
func CloseDuckDB() {
	if duckDB != nil {
		if err := duckDB.Close(); err != nil {
			zap.S().Warnf("关闭 duckdb 失败: %v", err)
		}
	}
}
