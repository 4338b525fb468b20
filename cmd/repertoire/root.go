// ABOUTME: Root Cobra command and global flags
// ABOUTME: Sets up logging, configuration and the storage connection

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/harper/repertoire/internal/config"
	"github.com/harper/repertoire/internal/storage"
	"github.com/spf13/cobra"
)

var (
	db        storage.Repository
	appConfig *config.Config

	dbPath      string
	backendFlag string
	bookFlag    string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "repertoire",
	Short: "Build and drill chess opening repertoires",
	Long: `
██████╗ ███████╗██████╗ ███████╗██████╗ ████████╗ ██████╗ ██╗██████╗ ███████╗
██╔══██╗██╔════╝██╔══██╗██╔════╝██╔══██╗╚══██╔══╝██╔═══██╗██║██╔══██╗██╔════╝
██████╔╝█████╗  ██████╔╝█████╗  ██████╔╝   ██║   ██║   ██║██║██████╔╝█████╗
██╔══██╗██╔══╝  ██╔═══╝ ██╔══╝  ██╔══██╗   ██║   ██║   ██║██║██╔══██╗██╔══╝
██║  ██║███████╗██║     ███████╗██║  ██║   ██║   ╚██████╔╝██║██║  ██║███████╗
╚═╝  ╚═╝╚══════╝╚═╝     ╚══════╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝╚═╝  ╚═╝╚══════╝

         Build opening repertoires and drill them until they stick

Examples:
  repertoire add e4 e5 Nf3 Nc6 Bb5
  repertoire add --side black e4 c5
  repertoire check e4 e5 Nf3 Nc6 Bc4
  repertoire drill
  repertoire stats --at "e4"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backendFlag != "" {
			cfg.Backend = backendFlag
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		appConfig = cfg

		readOnly := false
		if f := cmd.Flags().Lookup("read-only"); f != nil {
			readOnly = f.Value.String() == "true"
		}

		db, err = openStorage(cfg, readOnly)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (SQLite file or Badger directory)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite or badger (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&bookFlag, "book", "b", "", "repertoire to work on (default from config, then 'main')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setupLogging installs the default slog logger on stderr.
func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openStorage opens the --db path when given, otherwise the configured backend.
func openStorage(cfg *config.Config, readOnly bool) (storage.Repository, error) {
	if dbPath == "" {
		return cfg.OpenStorage(readOnly)
	}
	path := config.ExpandPath(dbPath)
	switch cfg.GetBackend() {
	case config.BackendBadger:
		return storage.NewBadgerStore(path, readOnly)
	default:
		if readOnly {
			return storage.NewReadOnlySQLiteDB(path)
		}
		return storage.NewSQLiteDB(path)
	}
}
