package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/fileprobe/internal/config"
	"github.com/JonMunkholm/fileprobe/internal/core"
	"github.com/JonMunkholm/fileprobe/internal/logging"
	"github.com/JonMunkholm/fileprobe/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"engine_memory_limit", cfg.Engine.MemoryLimit,
		"engine_threads", cfg.Engine.Threads,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Start the embedded engine
	ctx := context.Background()
	engine, err := core.OpenEngine(ctx, core.EngineConfig{
		MemoryLimit:       cfg.Engine.MemoryLimit,
		Threads:           cfg.Engine.Threads,
		ExtensionDir:      cfg.Engine.ExtensionDir,
		OfflineExtensions: cfg.Engine.OfflineExtensions,
		TempDir:           cfg.Engine.TempDir,
	})
	if err != nil {
		slog.Error("failed to open engine", "error", err)
		os.Exit(1)
	}

	service := core.NewService(engine, core.ServiceConfig{
		PreviewRows:          cfg.Ingest.PreviewRows,
		SizeGateBytes:        cfg.Ingest.SizeGateBytes,
		MaxDecompressedBytes: cfg.Ingest.MaxDecompressedBytes,
	})

	slog.Info("formats registered", "formats", core.SupportedFormats())

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stops listening, then waits for in-flight engine sessions
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		engine.Close()
		os.Exit(1)
	}

	<-done
	if err := engine.Close(); err != nil {
		slog.Warn("engine close failed", "error", err)
	}
	slog.Info("server stopped")
}
