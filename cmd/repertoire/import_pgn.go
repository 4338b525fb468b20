// ABOUTME: Repertoire import-pgn command
// ABOUTME: Records the main lines of PGN files into the active book

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/rules"
	"github.com/spf13/cobra"
)

var importPGNCmd = &cobra.Command{
	Use:   "import-pgn <file...>",
	Short: "Add the games of PGN files to the repertoire",
	Long: `Add the main line of every game in one or more PGN files.
Files are parsed in parallel; nothing is saved if any line is illegal.

Examples:
  repertoire import-pgn ruy-lopez.pgn
  repertoire import-pgn --book caro --side black caro/*.pgn`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sideStr, _ := cmd.Flags().GetString("side")
		side, r, err := loadOrCreateBook(sideStr)
		if err != nil {
			return err
		}

		files, err := rules.ParsePGNFiles(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("failed to read PGN: %w", err)
		}

		before := len(r.Positions())
		total := 0
		for i, lines := range files {
			n, err := r.ImportLines(lines, side)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			total += n
		}
		if err := saveBook(side, r); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Imported %d lines into %s", total, currentBook()))
		fmt.Fprintf(out, "  %d new positions, %d total\n", len(r.Positions())-before, len(r.Positions()))
		return nil
	},
}

func init() {
	importPGNCmd.Flags().StringP("side", "s", "white", "side the book is built for when creating it (white or black)")
	rootCmd.AddCommand(importPGNCmd)
}
