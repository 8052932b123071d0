package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var onlyOneSignalHandler = make(chan struct{})

// SetupSignalHandler 返回一个在收到 SIGINT/SIGTERM 时取消的 context，
// 第二次收到信号时直接退出。只能调用一次
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // 重复调用会 panic

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		zap.S().Infof("收到信号 %s，准备退出", sig)
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
