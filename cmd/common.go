package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"chyron-analysis/config"
	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	outputJSON = "json"
	outputTSV  = "tsv"
)

type rootOptions struct {
	configFilePath string
	verbose        bool
}

func setupLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func loadConfig(opts *rootOptions) (*config.GlobalConfig, error) {
	cfg, err := config.LoadOrDefault(opts.configFilePath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "读取本地配置文件错误")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, pkgerrors.Wrapf(errors.Join(errs...), "本地配置文件验证错误")
	}
	return cfg, nil
}

// newAnalysisService 未给出输入文件时打开 DuckDB 记录库
func newAnalysisService(cfg *config.GlobalConfig, needStore bool) (*service.AnalysisService, error) {
	stopwords, err := service.LoadStopwords(cfg.AnalysisConfig.StopwordsFile)
	if err != nil {
		return nil, err
	}
	var store *service.RecordStore
	if needStore {
		if err := db.InitDuckDB(cfg.DuckDBConfig); err != nil {
			return nil, pkgerrors.Wrapf(err, "DuckDB 连接错误")
		}
		store, err = service.NewRecordStore(db.GetDuckDB(), cfg.DuckDBConfig.Table, cfg.DuckDBConfig.BatchSize, cfg.IngestConfig.TimeLocation())
		if err != nil {
			return nil, err
		}
	}
	return service.NewAnalysisService(cfg, stopwords, store), nil
}

func openResultStore(cfg *config.GlobalConfig) (*service.ResultStore, error) {
	if err := db.InitResultDB(cfg.ResultsConfig); err != nil {
		return nil, pkgerrors.Wrapf(err, "结果库连接错误")
	}
	store := service.NewResultStore(db.GetResultDB(), cfg.ResultsConfig.BatchSize)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// filterFlags 各分析命令共用的过滤参数
type filterFlags struct {
	stations []string
	from     string
	to       string
	program  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.stations, "station", nil, "只分析这些电视台，可重复或逗号分隔")
	cmd.Flags().StringVar(&f.from, "from", "", "开始时间（含），如 2019-03-01 或 2019-03-01 06:00:00")
	cmd.Flags().StringVar(&f.to, "to", "", "结束时间（含），只给日期时包含当天")
	cmd.Flags().StringVar(&f.program, "program", "", "片段 ID 包含的节目名子串")
}

func (f *filterFlags) build(cfg *config.GlobalConfig) (service.RecordFilter, error) {
	loc := cfg.IngestConfig.TimeLocation()
	start, err := service.ParseTimeBound(f.from, loc, false)
	if err != nil {
		return service.RecordFilter{}, err
	}
	end, err := service.ParseTimeBound(f.to, loc, true)
	if err != nil {
		return service.RecordFilter{}, err
	}
	return service.RecordFilter{
		Stations:        f.stations,
		Start:           start,
		End:             end,
		ProgramContains: f.program,
	}, nil
}

// loadRecords 从文件或 DuckDB 加载清洗后的记录
func loadRecords(ctx context.Context, svc *service.AnalysisService, paths []string, filter service.RecordFilter) ([]model.CleanedRecord, error) {
	records, report, err := svc.LoadCleaned(ctx, paths, filter)
	if err != nil {
		return nil, err
	}
	if report != nil && report.Ingest != nil {
		zap.S().Infof("读取 %d 行: 接受 %d, 跳过 %d, 过滤 %d", report.Ingest.Rows, report.Ingest.Accepted, report.Ingest.SkippedTotal(), report.Ingest.Filtered)
	}
	if report != nil && report.Clean != nil && report.Clean.Malformed > 0 {
		zap.S().Warnf("%d 条记录反转义失败", report.Clean.Malformed)
	}
	if len(records) == 0 {
		zap.S().Warn("没有可分析的记录")
	}
	return records, nil
}

// writeOutput 按格式输出，tsv 为 nil 时总是输出 JSON
func writeOutput(format string, v interface{}, tsv func(w io.Writer) error) error {
	switch format {
	case outputTSV:
		if tsv != nil {
			return tsv(os.Stdout)
		}
		fallthrough
	case outputJSON, "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return pkgerrors.Errorf("不支持的输出格式 %q", format)
}
