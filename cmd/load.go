package cmd

import (
	"context"

	"chyron-analysis/config"
	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/signals"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewLoadCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file.tsv[.gz]>...",
		Short: "将 TSV 字幕数据清洗后导入 DuckDB",
		Long:  "读取无表头的五列 TSV（时间戳、电视台、时长、片段 ID、文本），清洗文本后重建 DuckDB 记录表",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runLoad(signals.SetupSignalHandler(), cfg, args)
		},
	}
	return cmd
}

func runLoad(ctx context.Context, cfg *config.GlobalConfig, paths []string) error {
	svc, err := newAnalysisService(cfg, true)
	if err != nil {
		return err
	}
	defer db.CloseDuckDB()

	n, report, err := svc.ImportFiles(ctx, paths)
	if err != nil {
		return errors.Wrap(err, "导入失败")
	}
	if report != nil && report.Ingest != nil {
		zap.S().Infof("读取 %d 个文件 %d 行, 跳过 %d 行 %v", report.Ingest.Files, report.Ingest.Rows, report.Ingest.SkippedTotal(), report.Ingest.Skipped)
		for _, ex := range report.Ingest.Examples {
			zap.S().Debugf("跳过: %s", ex)
		}
	}
	if report != nil && report.Clean != nil {
		zap.S().Infof("反转义失败 %d 条, 丢弃 %d 条", report.Clean.Malformed, report.Clean.Dropped)
	}
	zap.S().Infof("DuckDB 中的记录数量: %d", n)
	return nil
}
