package cmd

import (
	"fmt"
	"io"

	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"
	"chyron-analysis/pkg/signals"

	"github.com/spf13/cobra"
)

func NewDescribeCommand(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	var output string

	cmd := &cobra.Command{
		Use:   "describe [file.tsv]...",
		Short: "按电视台输出描述性统计",
		Long:  "给出文件时从文件读取，否则从 DuckDB 记录库读取",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
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
			records, err := loadRecords(signals.SetupSignalHandler(), svc, args, filter)
			if err != nil {
				return err
			}

			summaries := service.Describe(records)
			return writeOutput(output, summaries, func(w io.Writer) error {
				return writeSummariesTSV(w, summaries)
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "输出格式 json|tsv")
	return cmd
}

func writeSummariesTSV(w io.Writer, summaries []model.StationSummary) error {
	if _, err := fmt.Fprintln(w, "station\trecords\ttotal_duration\tmean_duration\tdistinct_texts\tmean_text_length\tfirst_seen\tlast_seen"); err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%d\t%.2f\t%s\t%s\n",
			s.Station, s.Records, s.TotalDuration, s.MeanDuration, s.DistinctTexts, s.MeanTextLength,
			s.FirstSeen.Format(model.TimestampLayout), s.LastSeen.Format(model.TimestampLayout)); err != nil {
			return err
		}
	}
	return nil
}
