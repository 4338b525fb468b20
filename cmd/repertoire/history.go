// ABOUTME: Repertoire history command
// ABOUTME: Shows the log of drilled lines of the active book

package main

import (
	"fmt"

	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "Show recently drilled lines",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("--limit cannot be negative")
		}

		name := currentBook()
		drills, err := db.ListDrills(name, limit)
		if err != nil {
			return fmt.Errorf("failed to list drills: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(drills) == 0 {
			fmt.Fprintf(out, "No drills for %s yet. Use 'repertoire drill' to start.\n", name)
			return nil
		}

		passed := 0
		for _, d := range drills {
			if d.Succeeded() {
				passed++
			}
			fmt.Fprintln(out, ui.FormatDrill(d))
		}
		fmt.Fprintf(out, "\n%d of %d lines passed\n", passed, len(drills))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of drills to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
