package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/config"
	"github.com/NassimMahmoudi/mcp-server/internal/mcpserver"
	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
	"github.com/NassimMahmoudi/mcp-server/internal/normalize"
	"github.com/NassimMahmoudi/mcp-server/internal/search/qsc"
	"github.com/NassimMahmoudi/mcp-server/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("repo_url", cfg.Repo.URL),
		zap.Duration("repo_timeout", cfg.Repo.Timeout),
		zap.String("addr", cfg.Server.Addr),
		zap.String("path", cfg.Server.Path),
	)
	if cfg.Repo.URL == "" {
		logger.Warn("REPO_SERVER_URL is empty, every search will return no documents")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	fetcher := qsc.New(qsc.Config{
		Endpoint: cfg.Repo.URL,
		Timeout:  cfg.Repo.Timeout,
	}, logger.Named("qsc"), m)

	svc := service.NewSearchService(service.SearchServiceDeps{
		Fetcher:    fetcher,
		Normalizer: normalize.New(logger.Named("normalize"), m),
		Logger:     logger.Named("search"),
		Metrics:    m,
	})

	srv := mcpserver.New(mcpserver.Config{
		Name:            cfg.Server.Name,
		Version:         cfg.Server.Version,
		Addr:            cfg.Server.Addr,
		Path:            cfg.Server.Path,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		DefaultLimit:    cfg.Search.DefaultLimit,
	}, svc, logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("MCP server terminated", zap.Error(err))
		return err
	}

	logger.Info("MCP server stopped")
	return nil
}
