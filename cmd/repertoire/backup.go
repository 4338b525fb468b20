// ABOUTME: Backup, restore and reset commands
// ABOUTME: Moves every book, its statistics and the drill log through portable YAML

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of all data",
	Long: `Create a YAML backup file containing every book, its drill statistics
and the drill log.

Examples:
  repertoire backup --output repertoire.yaml
  repertoire backup -o ~/backups/repertoire-$(date +%Y%m%d).yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, err := storage.ExportToYAML(db)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		if output == "" {
			output = fmt.Sprintf("repertoire-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}

		books, drills := countData()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("Backup created: %s", output))
		fmt.Fprintf(out, "  %d books, %d drills\n", books, drills)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore data from a YAML backup",
	Long: `Restore books, statistics and the drill log from a backup created with
'repertoire backup'. Books with the same name are replaced; others are kept.
Use 'repertoire reset' first for a clean restore.

Examples:
  repertoire restore repertoire.yaml
  repertoire restore --confirm ~/backups/repertoire-20250101.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askConfirm(cmd, fmt.Sprintf("Restore data from '%s'?", filename)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		if err := storage.ImportFromYAML(db, data); err != nil {
			return fmt.Errorf("failed to restore: %w", err)
		}

		books, drills := countData()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("Restore complete"))
		fmt.Fprintf(out, "  %d books, %d drills in database\n", books, drills)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all books, statistics and drills",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askConfirm(cmd, "Delete ALL books and drill history?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		if err := db.Reset(); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ All data deleted"))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <book>",
	Short: "Delete a book with its statistics and drills",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := db.LoadRepertoire(name); err != nil {
			return fmt.Errorf("book '%s' not found", name)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askConfirm(cmd, fmt.Sprintf("Remove '%s' and its drill history?", name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		if err := db.DeleteRepertoire(name); err != nil {
			return fmt.Errorf("failed to remove book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Removed %s", name))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: repertoire-YYYYMMDD-HHMMSS.yaml)")
	restoreCmd.Flags().Bool("confirm", false, "skip confirmation prompt")
	resetCmd.Flags().Bool("confirm", false, "skip confirmation prompt")
	removeCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(removeCmd)
}

// askConfirm prompts on the command's input and accepts y or yes.
func askConfirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// countData returns the number of stored books and drills.
func countData() (int, int) {
	books, _ := db.ListRepertoires()
	drills := 0
	for _, b := range books {
		d, _ := db.ListDrills(b.Name, 0)
		drills += len(d)
	}
	return len(books), drills
}
