package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"record_syncer/internal/config"
	"record_syncer/internal/domain"
	"record_syncer/internal/retry"
	"record_syncer/internal/service"
	"record_syncer/internal/sink"
	"record_syncer/internal/source/records"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to config file")
	baseURL := flag.String("base-url", "", "source/sink base URL (overrides config)")
	dryRun := flag.Bool("dry-run", false, "fetch and report without writing to the sink")
	limit := flag.Int("limit", 0, "maximum number of records to process (0 = no limit)")
	reportPath := flag.String("report", "", "dry-run report path (overrides config)")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *reportPath != "" {
		cfg.ReportPath = *reportPath
	}

	runCtx := domain.RunContext{RunID: newRunID(), BaseURL: cfg.BaseURL}
	logger = setupLogger(cfg.LogLevel).With("run_id", runCtx.RunID)

	logger.Info("run start",
		"base_url", runCtx.BaseURL,
		"dry_run", *dryRun,
		"limit", *limit,
	)

	client := newHTTPClient(cfg)
	defer client.CloseIdleConnections()

	exec := retry.New(retry.Config{Client: client}, logger)

	source := records.New(records.Config{
		BaseURL:  cfg.BaseURL,
		PageSize: cfg.PageSize,
		Policy:   cfg.Retry.Policy(),
	}, exec, logger)

	sinkClient := sink.New(sink.Config{
		BaseURL: cfg.BaseURL,
		Policy:  cfg.Retry.Policy(),
	}, exec, nil, logger)

	svc := service.NewSyncService(source, sinkClient, runCtx, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		rep, err := svc.DryRun(ctx, *limit)
		if err != nil {
			logger.Error("dry run failed", "error", err)
			return 1
		}
		if err := rep.Write(cfg.ReportPath); err != nil {
			logger.Error("failed to write report", "error", err)
			return 1
		}
		logger.Info("dry run report generated", "path", cfg.ReportPath, "count", rep.Count)
		return 0
	}

	outcome, err := svc.Sync(ctx, *limit)
	if err != nil {
		logger.Error("sync failed", "error", err)
		return 1
	}

	if outcome.Failed > 0 {
		return 2
	}
	return 0
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		},
	}
}

func newRunID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:10]
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
