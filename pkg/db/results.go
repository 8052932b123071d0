package db

import (
	"strings"
	"sync"

	"chyron-analysis/config"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var resultDB *gorm.DB
var resultDBOnce sync.Once

// getDialector 根据 dsn 前缀选择驱动，返回 dialector 和是否 sqlite
func getDialector(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false
	case strings.HasPrefix(dsn, "mysql://"):
		return mysql.Open(strings.TrimPrefix(dsn, "mysql://")), false
	default:
		return sqlite.Open(dsn), true
	}
}

// OpenResultDB 按配置打开结果库，配置了副本时注册只读副本
func OpenResultDB(cfg *config.ResultsConfig) (*gorm.DB, error) {
	dial, isSQLite := getDialector(cfg.DSN)
	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "连接结果库失败")
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, dsn := range cfg.Replicas {
			d, _ := getDialector(dsn)
			replicas = append(replicas, d)
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if cfg.ConnMaxLifetime > 0 {
			resolver = resolver.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
		if err := gdb.Use(resolver); err != nil {
			return nil, errors.Wrapf(err, "注册结果库只读副本失败")
		}
		zap.S().Debugf("结果库已注册 %d 个只读副本", len(replicas))
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrapf(err, "获取结果库连接池失败")
	}
	maxIdle, maxOpen := cfg.MaxIdleConns, cfg.MaxOpenConns
	if isSQLite {
		maxIdle, maxOpen = 1, 1
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return gdb, nil
}

// InitResultDB 初始化全局结果库连接
func InitResultDB(cfg *config.ResultsConfig) error {
	var err error
	resultDBOnce.Do(func() {
		resultDB, err = OpenResultDB(cfg)
		if err != nil {
			zap.S().Errorf("%v", err)
			return
		}
		zap.S().Debug("结果库初始化完成...")
	})
	return err
}

// GetResultDB 获取结果库连接
func GetResultDB() *gorm.DB {
	return resultDB
}
