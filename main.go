package main

import (
	"fmt"
	"os"

	"chyron-analysis/cmd"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer zap.L().Sync()

	if err := cmd.NewRootCommand().Execute(); err != nil {
		zap.S().Errorf("%v", err)
		zap.L().Sync()
		os.Exit(1)
	}
}
