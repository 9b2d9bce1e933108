package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/bookshelf/infrastructure/api"
	"github.com/helixml/bookshelf/internal/config"
	"github.com/helixml/bookshelf/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 3000)
  DATA_DIR                     Data directory (default: ~/.bookshelf)
  DB_URL, DATABASE_URL         Database URL (default: sqlite:///{data_dir}/bookshelf.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated keys required to submit reviews
  CORS_ALLOWED_ORIGINS         Comma-separated allowed origins (default: *)
  REVIEW_RATE_LIMIT            Review submissions per IP per minute (default: 20)
  SEED_ON_START                Load the sample catalog into an empty database (default: true)
  HTTP_CACHE_DIR               Cache provider responses on disk

  ENRICHMENT_ENDPOINT_*        Text generation service configuration
    PROVIDER                   heuristic, openai, anthropic, gemini (default: heuristic)
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier
    API_KEY                    API key for authentication
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_TOKENS                 Completion token limit (default: 1024)
    TEMPERATURE                Sampling temperature (default: 0.2)
    REQUESTS_PER_SECOND        Client-side rate limit (default: unlimited)
    CIRCUIT_BREAKER            Trip after repeated failures (default: false)

  ENRICHMENT_DEFAULT_*         Fallback values when a reply cannot be parsed
    SUMMARY                    (default: Review analysis unavailable)
    SCORE                      (default: 0.5)
    TAGS                       (default: review)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 3000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	slogger := log.NewLogger(cfg).Slog()

	attrs := append([]slog.Attr{slog.String("version", version())}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting bookshelf", attrs...)

	client, closeClient, err := newClient(cfg, slogger)
	if err != nil {
		return fmt.Errorf("create bookshelf client: %w", err)
	}
	defer closeClient()

	apiServer := api.NewAPIServer(client,
		api.WithReviewRateLimit(cfg.ReviewRateLimit()),
		api.WithCORSOrigins(cfg.CORSOrigins()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slogger.Error("shutdown error", slog.Any("error", err))
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
