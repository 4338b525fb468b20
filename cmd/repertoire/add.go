// ABOUTME: Repertoire add command
// ABOUTME: Records a line of moves, creating the book when it does not exist

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <moves...>",
	Aliases: []string{"a"},
	Short:   "Add a line to the repertoire",
	Long: `Add a line of moves in SAN, played from the starting position.

The first move recorded for your side in a position becomes its main move.
The book is created on first use; --side picks the colour it is built for.

Examples:
  repertoire add e4 e5 Nf3 Nc6 Bb5
  repertoire add "e4 c5 Nf3 d6"
  repertoire add --book sicilian --side black e4 c5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sideStr, _ := cmd.Flags().GetString("side")
		side, r, err := loadOrCreateBook(sideStr)
		if err != nil {
			return err
		}
		moves := splitMoves(args)

		before := len(r.Positions())
		if err := r.PushLine(moves, side); err != nil {
			return fmt.Errorf("invalid line: %w", err)
		}
		if err := saveBook(side, r); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Added line to %s (%s)", currentBook(), side.Name()))
		fmt.Fprintf(out, "  %s\n", ui.FormatMoveList(moves, true))
		fmt.Fprintf(out, "  %d new positions, %d total\n", len(r.Positions())-before, len(r.Positions()))
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("side", "s", "white", "side the book is built for when creating it (white or black)")
	addCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(addCmd)
}
