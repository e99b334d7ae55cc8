package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/handler"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/server"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/store"
	"github.com/AnderBEz/thuCompiler/pkg/core/grpcx"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
	"github.com/AnderBEz/thuCompiler/pkg/core/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the analysis API server",
	Long: `Runs the analysis API server.

Endpoints:
  GET  /api/v1/health        - Health report
  POST /api/v1/analyze       - Full analysis (tokens, tree, diagnostics)
  POST /api/v1/tokenize      - Token stream only
  WS   /api/v1/analyze/ws    - Interactive analysis
  GET  /api/v1/history       - Past analyses
  GET  /api/v1/history/{id}  - Single past analysis

With grpc.enabled in the config, a gRPC health endpoint is served as
well (grpc.health.v1, suitable for load balancer probes).

Examples:
  thuc serve
  thuc serve --config ./configs/config.toml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := loggerFromConfig(cfg, "thuc-serve")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// History store
	var history store.HistoryStore
	if cfg.History.Enabled {
		sqliteStore, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{
			Path:       cfg.History.Path,
			MaxEntries: cfg.History.MaxEntries,
		})
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer sqliteStore.Close()
		history = sqliteStore

		if cfg.History.RetentionDays > 0 {
			go pruneLoop(ctx, sqliteStore, cfg.History.RetentionDays, logger)
		}
	}

	// Analysis service
	svc := service.NewService(service.Config{
		History:       history,
		MaxSourceSize: cfg.Analyzer.MaxSourceSize,
		CacheResults:  cfg.Analyzer.CacheEnabled,
		CacheTTL:      cfg.Analyzer.CacheTTL.Duration,
		Logger:        logger.WithName("thuc-service"),
	})

	// HTTP server
	srv, err := server.New(server.Config{
		Host:           cfg.Server.Host,
		HTTPPort:       cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		AnalyzeTimeout: cfg.Analyzer.AnalyzeTimeout.Duration,
		CORS: handler.CORSOptions{
			Enabled:        cfg.Server.CORS.Enabled,
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			AllowedMethods: cfg.Server.CORS.AllowedMethods,
		},
		Version: version.Version,
	}, svc)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.StartAsync(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	fmt.Printf("Analysis API on http://%s\n", srv.Address())

	// Optional gRPC health endpoint
	var grpcSrv *grpcx.Server
	if cfg.GRPC.Enabled {
		grpcCfg := grpcx.DefaultServerConfig()
		grpcCfg.Host = cfg.GRPC.Host
		grpcCfg.Port = cfg.GRPC.Port
		grpcSrv = grpcx.NewServer(grpcCfg)
		grpcSrv.RegisterHealth(srv.HealthRegistry())
		if err := grpcSrv.StartAsync(); err != nil {
			return fmt.Errorf("start grpc server: %w", err)
		}
		fmt.Printf("gRPC health on %s\n", grpcSrv.Address())
	}

	fmt.Println("Press Ctrl+C to stop")

	// Wait for signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if grpcSrv != nil {
		grpcSrv.StopWithTimeout(shutdownCtx)
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

// pruneLoop removes history entries past the retention window once a day
func pruneLoop(ctx context.Context, s store.HistoryStore, retentionDays int, logger *logging.Logger) {
	retention := time.Duration(retentionDays) * 24 * time.Hour
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Prune(ctx, retention)
			if err != nil {
				logger.Warn("history prune failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("history pruned", "removed", removed)
			}
		}
	}
}
