// ABOUTME: Repertoire stats command
// ABOUTME: Reports drill completeness of a position and of each recorded move out of it

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how thoroughly the repertoire has been drilled",
	Long: `Show the drill completeness below a position, overall and for each
recorded move out of it. Completeness is 100% when every line below has
been answered correctly often enough.

Examples:
  repertoire stats
  repertoire stats --at "e4 c5"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		book, r, err := loadBook()
		if err != nil {
			return err
		}
		position, err := atPosition(cmd)
		if err != nil {
			return err
		}
		if !r.ContainsPosition(position) {
			return fmt.Errorf("position is not in book '%s'", book.Name)
		}
		summary, err := loadSummary()
		if err != nil {
			return err
		}
		depth := summary.Config().TestDepth

		total, err := summary.Completeness(position, book.Side, r, depth)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", color.GreenString(book.Name), ui.FormatCompleteness(total))
		for _, o := range r.OpponentMoves(position) {
			c, err := summary.Completeness(o.ResultingKey, book.Side, r, depth)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %-8s %s\n", o.DisplayNotation, ui.FormatCompleteness(c))
		}
		return nil
	},
}

func init() {
	addAtFlag(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
