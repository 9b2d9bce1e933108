package main

import (
	"log/slog"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/internal/config"
)

// clientOptions returns the bookshelf.Option slice shared by every command.
// Callers append command-specific options before calling bookshelf.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []bookshelf.Option {
	return []bookshelf.Option{
		bookshelf.WithConfig(cfg),
		bookshelf.WithLogger(logger),
	}
}

// newClient creates a client and returns a func that closes it, logging
// any error.
func newClient(cfg config.AppConfig, logger *slog.Logger, extra ...bookshelf.Option) (*bookshelf.Client, func(), error) {
	opts := append(clientOptions(cfg, logger), extra...)
	client, err := bookshelf.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close bookshelf client", slog.Any("error", err))
		}
	}
	return client, closeFn, nil
}
