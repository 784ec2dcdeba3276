// Command examstats-server exposes the analysis pipeline as a JSON
// HTTP API. Clients POST already-typed tables; file ingestion stays in
// the CLI.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"examstats/internal/analysis"
	"examstats/internal/config"
	transport "examstats/internal/transport/http"
)

func main() {
	configPath := flag.String("config", "", "configuration file (.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	service := analysis.NewService(logger)
	metrics := transport.NewMetrics()
	handler := transport.NewHandler(service, metrics, logger)
	server := transport.NewServer(cfg, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", slog.Int("port", cfg.Server.Port))
	if err := server.Start(ctx, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
