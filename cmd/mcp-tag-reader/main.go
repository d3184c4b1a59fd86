package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/miroslavbel/test-task-for-zimad/internal/config"
	"github.com/miroslavbel/test-task-for-zimad/internal/mcp"
	"github.com/miroslavbel/test-task-for-zimad/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the process logger. stdout carries the MCP protocol in
// stdio mode, so logs always go to stderr.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDebug() {
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(w, opts)).With("service", cfg.ServerName)
}

// run wires the service and server and blocks until the server stops
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if version != "dev" {
		cfg.Version = version
	}
	logger.Debug("config.loaded", "config", cfg.String())

	service, err := pdf.NewService(cfg.MaxFileSize, cfg.Directory,
		pdf.WithWorkers(cfg.Workers),
		pdf.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create tag service: %w", err)
	}
	if err := service.ValidateConfiguration(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info("server.start", "mode", cfg.Mode, "version", cfg.Version)
	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("server.stopped")
	return nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server.failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Tag Reader\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
