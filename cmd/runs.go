package cmd

import (
	"fmt"
	"io"
	"time"

	"chyron-analysis/pkg/model"

	"github.com/spf13/cobra"
)

func NewRunsCommand(opts *rootOptions) *cobra.Command {
	var kind, output, showTimeline string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "列出结果库中保存的分析运行",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			store, err := openResultStore(cfg)
			if err != nil {
				return err
			}

			if showTimeline != "" {
				buckets, err := store.LoadTimeline(cmd.Context(), showTimeline)
				if err != nil {
					return err
				}
				return writeOutput(output, buckets, func(w io.Writer) error {
					return writeBucketsTSV(w, buckets)
				})
			}

			runs, err := store.ListRuns(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			return writeOutput(output, runs, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, "id\tkind\trows\tcreated_at"); err != nil {
					return err
				}
				for _, r := range runs {
					if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Kind, r.RowCount, r.CreatedAt.Format(time.RFC3339)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", fmt.Sprintf("只列出某类运行 %s|%s|%s", model.RunKindFrequency, model.RunKindLogOdds, model.RunKindTimeline))
	cmd.Flags().IntVar(&limit, "limit", 20, "最多列出的运行数")
	cmd.Flags().StringVar(&showTimeline, "timeline", "", "输出指定 run id 保存的时间桶")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "输出格式 json|tsv")
	return cmd
}
