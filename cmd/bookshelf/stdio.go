package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/bookshelf/internal/log"
	"github.com/helixml/bookshelf/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants browse the catalog, read reviews and search.
Configuration is loaded from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// stdout carries the protocol.
	slogger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel()).Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version()),
		slog.String("data_dir", cfg.DataDir()),
	)

	client, closeClient, err := newClient(cfg, slogger)
	if err != nil {
		return fmt.Errorf("create bookshelf client: %w", err)
	}
	defer closeClient()

	return mcp.NewServer(client.Books, client.Search, version(), slogger).ServeStdio()
}
