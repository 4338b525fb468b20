// ABOUTME: Repertoire list command
// ABOUTME: Lists every stored book with its side and size

package main

import (
	"fmt"

	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all books",
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := db.ListRepertoires()
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(books) == 0 {
			fmt.Fprintln(out, "No books yet. Use 'repertoire add' to record a line.")
			return nil
		}

		for _, b := range books {
			fmt.Fprintln(out, ui.FormatBook(b.Name, b.Side, len(b.Positions), b.UpdatedAt))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
