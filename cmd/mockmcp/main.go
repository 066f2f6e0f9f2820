package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amoylab/mockmcp/internal/common/config"
	"github.com/amoylab/mockmcp/internal/core"
	"github.com/amoylab/mockmcp/internal/mcp/session"
	"github.com/amoylab/mockmcp/internal/tools"
	"github.com/amoylab/mockmcp/pkg/logger"
	"github.com/amoylab/mockmcp/pkg/metrics"
	"github.com/amoylab/mockmcp/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "mockmcp.yaml", "path to configuration file")
}

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mockmcp",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mockmcp version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "mockmcp",
		Short: "Mock MCP Server",
		Long:  `Mock MCP Server serves canned tool responses over SSE and streamable HTTP for client testing`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", cfgPath, err)
			os.Exit(1)
		}
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	zapLogger.Info("configuration loaded",
		zap.String("path", cfgPath),
		zap.Int("port", cfg.Port))

	sessionStore := session.NewMemoryStore(zapLogger, cfg.Session.QueueSize)
	registry := tools.NewRegistry(zapLogger, cfg.Tools)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	srv := core.NewServer(zapLogger, cfg, sessionStore, registry, m)

	// Shut down on OS signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("received shutdown signal, stopping server...")
	case err := <-errChan:
		if err != nil {
			zapLogger.Error("server error occurred", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("failed to shut down gracefully", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
