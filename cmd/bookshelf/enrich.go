package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/internal/log"
)

type enrichOutput struct {
	Provider       string   `json:"provider"`
	Summary        string   `json:"summary"`
	SentimentScore float64  `json:"sentimentScore"`
	Tags           []string `json:"tags"`
}

func enrichCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "enrich <review text>",
		Short: "Analyse one review with the configured provider",
		Long: `Run the enrichment pipeline once against the configured provider and
print the summary, sentiment score and tags as JSON. Nothing is stored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd, envFile, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runEnrich(cmd *cobra.Command, envFile, text string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	slogger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel()).Slog()

	client, closeClient, err := newClient(cfg, slogger, bookshelf.WithSeed(false))
	if err != nil {
		return fmt.Errorf("create bookshelf client: %w", err)
	}
	defer closeClient()

	result, err := client.Enrichment.Enrich(context.Background(), text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(enrichOutput{
		Provider:       client.ProviderName(),
		Summary:        result.Summary(),
		SentimentScore: result.SentimentScore(),
		Tags:           result.Tags(),
	})
}
