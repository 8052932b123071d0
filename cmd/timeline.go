package cmd

import (
	"fmt"
	"io"
	"time"

	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"
	"chyron-analysis/pkg/signals"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewTimelineCommand(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	var pattern, start, end, output string
	var regex, save bool
	var interval, rebucket time.Duration

	cmd := &cobra.Command{
		Use:   "timeline --pattern wall --start 2019-03-01 --end 2019-03-31 [file.tsv]...",
		Short: "按电视台和时间区间统计命中文本的条数与时长",
		Long:  "输出 电视台 × 时间桶 的完整组合，没有数据的桶为 0；total 为 0 的桶表示无数据而不是 0% 覆盖",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.AnalysisConfig.Interval
			}
			loc := cfg.IngestConfig.TimeLocation()
			req := service.TimelineRequest{Pattern: pattern, Regex: regex, Interval: interval, Rebucket: rebucket}
			if req.Start, err = service.ParseTimeBound(start, loc, false); err != nil {
				return err
			}
			if req.End, err = service.ParseTimeBound(end, loc, true); err != nil {
				return err
			}
			if req.Start.IsZero() || req.End.IsZero() {
				return errors.New("必须指定 --start 和 --end")
			}
			// 非法正则在读取数据前报错
			if _, err := req.Matcher(); err != nil {
				return err
			}
			filter, err := filters.build(cfg)
			if err != nil {
				return err
			}
			svc, err := newAnalysisService(cfg, len(args) == 0)
			if err != nil {
				return err
			}
			defer db.CloseDuckDB()

			ctx := signals.SetupSignalHandler()
			records, err := loadRecords(ctx, svc, args, filter)
			if err != nil {
				return err
			}
			buckets, err := svc.Timeline(records, req)
			if err != nil {
				return err
			}

			if save {
				store, err := openResultStore(cfg)
				if err != nil {
					return err
				}
				params := req.Params()
				params["inputs"] = args
				run, err := store.SaveTimeline(ctx, params, buckets)
				if err != nil {
					return err
				}
				zap.S().Infof("结果已保存, run id: %s", run.ID)
			}

			return writeOutput(output, buckets, func(w io.Writer) error {
				return writeBucketsTSV(w, buckets)
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "匹配的文本（大小写不敏感）")
	cmd.Flags().BoolVar(&regex, "regex", false, "将 pattern 作为正则表达式")
	cmd.Flags().StringVar(&start, "start", "", "时间范围开始（含）")
	cmd.Flags().StringVar(&end, "end", "", "时间范围结束（含），只给日期时包含当天")
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "时间桶宽度")
	cmd.Flags().DurationVar(&rebucket, "rebucket", 0, "合并到更粗的时间窗口，必须是 interval 的整数倍")
	cmd.Flags().BoolVar(&save, "save", false, "将结果写入结果库")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "输出格式 json|tsv")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func writeBucketsTSV(w io.Writer, buckets []model.TimeBucket) error {
	if _, err := fmt.Fprintln(w, "station\tstart\tmatched_count\tmatched_duration\ttotal_count\ttotal_duration\tcoverage"); err != nil {
		return err
	}
	for _, b := range buckets {
		coverage := ""
		if ratio, ok := b.Coverage(); ok {
			coverage = fmt.Sprintf("%.4f", ratio)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			b.Station, b.Start.Format(model.TimestampLayout), b.MatchedCount, b.MatchedDuration, b.TotalCount, b.TotalDuration, coverage); err != nil {
			return err
		}
	}
	return nil
}
