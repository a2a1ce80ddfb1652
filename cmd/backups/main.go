// Command backups inspects the editor backup database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/db"
	"github.com/debemdeboas/mdwidget/internal/util/compression"
)

var (
	configPath string
	dbPath     string
)

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "backups",
		Short:         "Inspect and prune editor backups",
		Long:          `Lists, shows and deletes the crash-recovery snapshots editors write to the backup database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := os.Getenv(config.EnvConfigPath)
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Configuration file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Backup database (overrides storage.path)")

	root.AddCommand(newListCommand(), newShowCommand(), newDeleteCommand(), newPruneCommand())
	return root
}

// openKV opens the configured backup database. The caller closes it.
func openKV() (*backup.SQLiteKV, func(), error) {
	config.SetLogger(zerolog.Nop())
	db.SetLogger(zerolog.Nop())
	backup.SetLogger(zerolog.Nop())

	if err := config.LoadConfig(configPath); err != nil {
		return nil, nil, err
	}
	cfg := config.AppConfig.Storage
	if dbPath != "" {
		cfg.Path = dbPath
	}
	if cfg.Driver != config.StorageDriverSQLite && dbPath == "" {
		return nil, nil, fmt.Errorf("storage driver %q keeps no backups on disk", cfg.Driver)
	}

	compressor, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
	}

	database := db.NewSQLite(cfg.Path)
	if err := database.InitDB(); err != nil {
		return nil, nil, err
	}
	return backup.NewSQLiteKV(database, compressor), func() { _ = database.Close() }, nil
}

// withKV runs fn against the configured database.
func withKV(fn func(cmd *cobra.Command, args []string, kv *backup.SQLiteKV) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		kv, closeFn, err := openKV()
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd, args, kv)
	}
}
