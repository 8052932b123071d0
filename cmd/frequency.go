package cmd

import (
	"fmt"
	"io"

	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"
	"chyron-analysis/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewFrequencyCommand(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	var groupBy, output string
	var minFreq float64
	var save bool

	cmd := &cobra.Command{
		Use:   "freq [file.tsv]...",
		Short: "计算各分组的词频",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-freq") {
				minFreq = cfg.AnalysisConfig.MinFrequency
			}
			filter, err := filters.build(cfg)
			if err != nil {
				return err
			}
			if _, err := service.KeyFuncByName(groupBy); err != nil {
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
			_, freqs, err := svc.Frequencies(records, groupBy, minFreq)
			if err != nil {
				return err
			}

			if save {
				store, err := openResultStore(cfg)
				if err != nil {
					return err
				}
				run, err := store.SaveFrequencies(ctx, model.JSONParams{"group": groupBy, "min_freq": minFreq, "inputs": args}, freqs)
				if err != nil {
					return err
				}
				zap.S().Infof("结果已保存, run id: %s", run.ID)
			}

			return writeOutput(output, freqs, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, "group\tword\tcount\tfrequency"); err != nil {
					return err
				}
				for _, f := range freqs {
					if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\n", f.Group, f.Word, f.Count, f.Frequency); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&groupBy, "group", "g", service.GroupByStation, "分组维度 station|date|program|hour")
	cmd.Flags().Float64Var(&minFreq, "min-freq", service.DefaultMinFrequency, "最小相对词频")
	cmd.Flags().BoolVar(&save, "save", false, "将结果写入结果库")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "输出格式 json|tsv")
	return cmd
}
