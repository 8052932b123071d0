package config

import (
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
)

// IngestConfig 读取 TSV 文件的配置
type IngestConfig struct {
	// Strict 为 true 时遇到第一条格式错误的行即中止，否则跳过并计数
	Strict   bool   `json:"strict" yaml:"strict"`
	Location string `json:"location" yaml:"location"` // 时间戳所在时区
	// MaxLineBytes 单行最大字节数
	MaxLineBytes int `json:"maxLineBytes" yaml:"maxLineBytes"`
}

func (i *IngestConfig) Validate() []error {
	var errs = make([]error, 0)
	if _, err := time.LoadLocation(i.Location); err != nil {
		errs = append(errs, errors.Errorf("无法识别的时区 %q: %v", i.Location, err))
	}
	if i.MaxLineBytes < 1024 {
		errs = append(errs, errors.Errorf("maxLineBytes 过小: %d", i.MaxLineBytes))
	}
	return errs
}

// TimeLocation 返回解析时间戳使用的时区
func (i *IngestConfig) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(i.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NewDefaultIngestConfig() *IngestConfig {
	return &IngestConfig{
		Location:     "UTC",
		MaxLineBytes: 1 << 20,
	}
}

// CleanConfig 文本清洗配置
type CleanConfig struct {
	// DropMalformed 为 true 时丢弃反转义失败的记录，否则原样保留
	DropMalformed bool `json:"dropMalformed" yaml:"dropMalformed"`
}

func (c *CleanConfig) Validate() []error {
	return nil
}

func NewDefaultCleanConfig() *CleanConfig {
	return &CleanConfig{}
}

// AnalysisConfig 分析参数默认值
type AnalysisConfig struct {
	StopwordsFile string        `json:"stopwordsFile" yaml:"stopwordsFile"` // 为空时使用内置停用词表
	Stations      []string      `json:"stations" yaml:"stations"`           // 为空时使用数据中出现的全部电视台
	MinFrequency  float64       `json:"minFrequency" yaml:"minFrequency"`
	MinSupport    int64         `json:"minSupport" yaml:"minSupport"`
	Interval      time.Duration `json:"interval" yaml:"interval"`
	// MaxBuckets 单次时间序列查询最多输出的桶数（电视台 × 时间桶）
	MaxBuckets    int           `json:"maxBuckets" yaml:"maxBuckets"`
}

func (a *AnalysisConfig) Validate() []error {
	var errs = make([]error, 0)
	if a.MinFrequency < 0 || a.MinFrequency > 1 {
		errs = append(errs, errors.Errorf("minFrequency 必须在 [0,1] 之间，当前 %v", a.MinFrequency))
	}
	if a.MinSupport < 0 {
		errs = append(errs, errors.Errorf("minSupport 不能为负数"))
	}
	if a.Interval <= 0 {
		errs = append(errs, errors.Errorf("interval 必须大于 0"))
	}
	if a.MaxBuckets <= 0 {
		errs = append(errs, errors.Errorf("maxBuckets 必须大于 0，当前 %d", a.MaxBuckets))
	}
	return errs
}

func NewDefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		MinFrequency: 0.0001,
		MinSupport:   10,
		Interval:     time.Hour,
		MaxBuckets:   100000,
	}
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Debug        bool          `json:"debug" yaml:"debug"`
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
}

func (s *ServerConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.Addr == "" {
		errs = append(errs, errors.Errorf("server.addr 不能为空"))
	}
	return errs
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}
