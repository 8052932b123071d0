package cmd

import (
	"fmt"
	"io"

	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"
	"chyron-analysis/pkg/signals"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewLogOddsCommand(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	var groupBy, groupA, groupB, output string
	var minSupport int64
	var top int
	var save bool

	cmd := &cobra.Command{
		Use:   "logodds --a CNNW --b FOXNEWSW [file.tsv]...",
		Short: "计算两个分组之间的平滑对数几率比",
		Long:  "ratio = ln(((countA+1)/Σ(countA+1)) / ((countB+1)/Σ(countB+1)))，只保留两组合计出现次数不低于 min-support 的词",
		RunE: func(cmd *cobra.Command, args []string) error {
			if groupA == "" || groupB == "" {
				return errors.New("必须指定 --a 和 --b")
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-support") {
				minSupport = cfg.AnalysisConfig.MinSupport
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
			ratios, err := svc.LogOdds(records, groupBy, groupA, groupB, minSupport)
			if err != nil {
				return err
			}

			if save {
				store, err := openResultStore(cfg)
				if err != nil {
					return err
				}
				params := model.JSONParams{"group": groupBy, "a": groupA, "b": groupB, "min_support": minSupport, "inputs": args}
				run, err := store.SaveLogOdds(ctx, params, ratios)
				if err != nil {
					return err
				}
				zap.S().Infof("结果已保存, run id: %s", run.ID)
			}

			if top > 0 {
				forA, forB := service.TopDistinctive(ratios, top)
				ratios = append(forA, forB...)
			}
			return writeOutput(output, ratios, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "word\tcount_%s\tcount_%s\tratio\n", groupA, groupB); err != nil {
					return err
				}
				for _, r := range ratios {
					if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%.6f\n", r.Word, r.CountA, r.CountB, r.Ratio); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&groupBy, "group", "g", service.GroupByStation, "分组维度 station|date|program|hour")
	cmd.Flags().StringVar(&groupA, "a", "", "分组 A")
	cmd.Flags().StringVar(&groupB, "b", "", "分组 B")
	cmd.Flags().Int64Var(&minSupport, "min-support", service.DefaultMinSupport, "两组合计最少出现次数")
	cmd.Flags().IntVar(&top, "top", 0, "只输出两侧最具区分度的前 N 个词")
	cmd.Flags().BoolVar(&save, "save", false, "将结果写入结果库")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "输出格式 json|tsv")
	return cmd
}
