package main

import (
	"fmt"
	"os"

	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "atlas",
		Short:         "Indigenous Art Atlas catalog and moderation server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

// bootstrap loads configuration and builds the process logger
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

// openDatabase connects to PostgreSQL; commands that need it refuse the memory store
func openDatabase(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	if cfg.Store != config.StorePostgres {
		return nil, fmt.Errorf("command requires STORE=%s, got %q", config.StorePostgres, cfg.Store)
	}
	return database.New(&cfg.Database, log)
}
