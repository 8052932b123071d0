package cmd

import (
	"context"
	"net/http"
	"time"

	"chyron-analysis/pkg/api"
	"chyron-analysis/pkg/db"
	"chyron-analysis/pkg/signals"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [file.tsv]...",
		Short: "启动只读 HTTP 分析接口",
		Long:  "启动时加载一次记录（文件或 DuckDB），之后所有请求共享这份只读数据",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerConfig.Addr = addr
			}
			filter, err := filters.build(cfg)
			if err != nil {
				return err
			}
			svc, err := newAnalysisService(cfg, len(args) == 0)
			if err != nil {
				return err
			}

			ctx := signals.SetupSignalHandler()
			records, err := loadRecords(ctx, svc, args, filter)
			db.CloseDuckDB()
			if err != nil {
				return err
			}

			router := api.NewRouter(api.NewAnalysisAPI(svc, cfg, records), cfg.ServerConfig.Debug)
			server := &http.Server{
				Addr:         cfg.ServerConfig.Addr,
				Handler:      router,
				ReadTimeout:  cfg.ServerConfig.ReadTimeout,
				WriteTimeout: cfg.ServerConfig.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				zap.S().Infof("HTTP 服务监听 %s, 已加载 %d 条记录", cfg.ServerConfig.Addr, len(records))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return errors.Wrap(err, "HTTP 服务异常退出")
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errors.Wrap(err, "关闭 HTTP 服务失败")
			}
			zap.S().Info("HTTP 服务已关闭")
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖配置中的 server.addr")
	return cmd
}
