// Package main is the entry point for the bookshelf CLI.
//
//	@title						Bookshelf API
//	@version					1.0
//	@description				Book catalog with reviews enriched by a generated summary, sentiment score and tags
//	@host						localhost:3000
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-KEY
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/internal/config"
)

// Build information set via ldflags.
var (
	commit = "unknown"
	date   = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookshelf",
		Short: "Bookshelf review server",
		Long:  `Bookshelf serves a book catalog whose reader reviews are enriched with a generated summary, sentiment score and tags.`,
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(seedCmd())
	cmd.AddCommand(enrichCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func version() string {
	return bookshelf.Version
}
