package cmd

import (
	"chyron-analysis/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "chyron-analysis",
		Short:        "电视新闻台标字幕文本分析工具",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(opts.verbose)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径，不存在时使用默认配置")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	rootCmd.AddCommand(
		NewLoadCommand(opts),
		NewDescribeCommand(opts),
		NewFrequencyCommand(opts),
		NewLogOddsCommand(opts),
		NewTimelineCommand(opts),
		NewRunsCommand(opts),
		NewServeCommand(opts),
	)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		zap.S().Info("使用 'load' 导入数据，使用 'freq'、'logodds'、'timeline' 进行分析")
		cmd.Help()
	}
	rootCmd.Version = util.GetVersion().Version
	return rootCmd
}
