package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type GlobalConfig struct {
	DuckDBConfig   *DuckDBConfig   `json:"duckdb" yaml:"duckdb"`
	ResultsConfig  *ResultsConfig  `json:"results" yaml:"results"`
	IngestConfig   *IngestConfig   `json:"ingest" yaml:"ingest"`
	CleanConfig    *CleanConfig    `json:"clean" yaml:"clean"`
	AnalysisConfig *AnalysisConfig `json:"analysis" yaml:"analysis"`
	ServerConfig   *ServerConfig   `json:"server" yaml:"server"`
}

func (g *GlobalConfig) Validate() []error {
	var errs = make([]error, 0)
	if g.DuckDBConfig != nil {
		errs = append(errs, g.DuckDBConfig.Validate()...)
	}
	if g.ResultsConfig != nil {
		errs = append(errs, g.ResultsConfig.Validate()...)
	}
	if g.IngestConfig != nil {
		errs = append(errs, g.IngestConfig.Validate()...)
	}
	if g.CleanConfig != nil {
		errs = append(errs, g.CleanConfig.Validate()...)
	}
	if g.AnalysisConfig != nil {
		errs = append(errs, g.AnalysisConfig.Validate()...)
	}
	if g.ServerConfig != nil {
		errs = append(errs, g.ServerConfig.Validate()...)
	}
	return errs
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DuckDBConfig:   NewDefaultDuckDBConfig(),
		ResultsConfig:  NewDefaultResultsConfig(),
		IngestConfig:   NewDefaultIngestConfig(),
		CleanConfig:    NewDefaultCleanConfig(),
		AnalysisConfig: NewDefaultAnalysisConfig(),
		ServerConfig:   NewDefaultServerConfig(),
	}
}

// LoadOrDefault 配置文件不存在时返回默认配置
func LoadOrDefault(configFilePath string) (*GlobalConfig, error) {
	if _, err := os.Stat(configFilePath); err != nil {
		if os.IsNotExist(err) {
			return NewDefaultGlobalConfig(), nil
		}
		return nil, err
	}
	return TryLoadFromDisk(configFilePath)
}

func TryLoadFromDisk(configFilePath string) (*GlobalConfig, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		return nil, errors.Errorf("解析配置文件错误:%s", err.Error())
	}
	cfg := NewDefaultGlobalConfig()
	if err := v.Unmarshal(cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = strings.TrimPrefix(fileType, ".")
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
