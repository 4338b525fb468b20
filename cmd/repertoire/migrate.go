// ABOUTME: Migration command for converting repertoire data between storage backends
// ABOUTME: Supports sqlite-to-badger and badger-to-sqlite with safety checks

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/repertoire/internal/config"
	"github.com/harper/repertoire/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Migrate all books, statistics and drills from the current backend to a
different backend.

Does NOT update the config file; verify the migration was successful then
update config.json manually.

Examples:
  repertoire migrate --to badger
  repertoire migrate --to sqlite --data-dir ~/repertoire-sqlite
  repertoire migrate --to badger --force`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var (
	migrateTo      string
	migrateDataDir string
	migrateForce   bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite or badger)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory (defaults to current config data_dir)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow writing into existing target storage")
	_ = migrateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourceBackend := appConfig.GetBackend()
	target := &config.Config{Backend: migrateTo, DataDir: appConfig.GetDataDir()}
	if migrateDataDir != "" {
		target.DataDir = config.ExpandPath(migrateDataDir)
	}

	if migrateTo != config.BackendSQLite && migrateTo != config.BackendBadger {
		return fmt.Errorf("invalid target backend %q: must be \"sqlite\" or \"badger\"", migrateTo)
	}
	if migrateTo == sourceBackend {
		return fmt.Errorf("target backend %q is the same as the current backend", migrateTo)
	}

	targetPath := target.StoragePath()
	exists, err := storageExists(migrateTo, targetPath)
	if err != nil {
		return fmt.Errorf("check target storage: %w", err)
	}
	if exists && !migrateForce {
		return fmt.Errorf("target %q already holds data; use --force to write into it", targetPath)
	}

	// The open source store holds the Badger directory lock, so it is reused.
	dst, err := target.OpenStorage(false)
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", migrateTo, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing target storage: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.YellowString("Migrating repertoire data:"))
	fmt.Fprintf(out, "  Source:  %s\n", sourceBackend)
	fmt.Fprintf(out, "  Target:  %s (%s)\n", migrateTo, targetPath)
	fmt.Fprintln(out)

	summary, err := storage.MigrateData(db, dst)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("Migration complete!"))
	fmt.Fprintf(out, "  Books:   %d\n", summary.Books)
	fmt.Fprintf(out, "  Drills:  %d\n", summary.Drills)
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.YellowString("Note: config.json was NOT updated. To switch to the new backend, edit:"))
	fmt.Fprintf(out, "  %s\n", config.GetConfigPath())
	fmt.Fprintf(out, "  Set \"backend\": %q", migrateTo)
	if migrateDataDir != "" {
		fmt.Fprintf(out, " and \"data_dir\": %q", migrateDataDir)
	}
	fmt.Fprintln(out)
	return nil
}

// storageExists reports whether the target backend already has data at path.
func storageExists(backend, path string) (bool, error) {
	if backend == config.BackendBadger {
		return storage.IsDirNonEmpty(path)
	}
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
