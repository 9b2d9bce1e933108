package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/infrastructure/persistence"
	"github.com/helixml/bookshelf/internal/log"
)

func seedCmd() *cobra.Command {
	var (
		envFile string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a book catalog into an empty database",
		Long: `Load books into the database when it holds none.

Without --file the built-in sample catalog is used. A catalog file is YAML:

  books:
    - title: The Great Gatsby
      author: F. Scott Fitzgerald
      description: ...
      coverImageUrl: https://...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, envFile, file)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the sample catalog")

	return cmd
}

func runSeed(cmd *cobra.Command, envFile, file string) error {
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

	ctx := context.Background()

	var added int
	if file == "" {
		added, err = client.Seed(ctx)
	} else {
		added, err = seedFromFile(ctx, client, file)
	}
	if err != nil {
		return err
	}

	if added == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "catalog already has books; nothing added")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d books\n", added)
	return nil
}

func seedFromFile(ctx context.Context, client *bookshelf.Client, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	books, err := persistence.LoadCatalog(f)
	if err != nil {
		return 0, err
	}
	return client.Books.Seed(ctx, books)
}
