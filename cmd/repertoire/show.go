// ABOUTME: Repertoire show command
// ABOUTME: Prints the recorded moves, notes and drill completeness of a position

package main

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"s"},
	Short:   "Show the recorded moves of a position",
	Long: `Show the moves recorded at a position, which of them are main moves or
alternatives, the position's notes and how thoroughly it has been drilled.

Examples:
  repertoire show
  repertoire show --at "e4 e5 Nf3"`,
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

		out := cmd.OutOrStdout()
		at, _ := cmd.Flags().GetString("at")
		fmt.Fprintf(out, "%s %s\n", color.GreenString(book.Name), color.New(color.Faint).Sprintf("[%s]", book.Side.Name()))
		if at != "" {
			fmt.Fprintf(out, "  after %s\n", ui.FormatMoveList(splitMoves([]string{at}), true))
		}
		fmt.Fprintf(out, "  %s\n", fen.Key(position))

		if !r.ContainsPosition(position) {
			fmt.Fprintln(out, color.YellowString("Position is not in the book."))
			return nil
		}

		toMove := fen.SideToMove(position)
		if toMove == book.Side {
			fmt.Fprintln(out, "\nYour moves:")
		} else {
			fmt.Fprintln(out, "\nOpponent replies:")
		}
		options := r.OpponentMoves(position)
		if len(options) == 0 {
			fmt.Fprintln(out, "  (none recorded)")
		}
		alternatives := r.Alternatives(position)
		mainMove, hasMain := r.MainMove(position)
		for _, o := range options {
			main := hasMain && o.DisplayNotation == mainMove.DisplayNotation
			alt := slices.Contains(alternatives, o.DisplayNotation)
			fmt.Fprintf(out, "  %s\n", ui.FormatOption(o, main, alt))
		}

		if notes := r.Notes(position); notes != "" {
			fmt.Fprintf(out, "\nNotes:\n  %s\n", notes)
		}

		summary, err := loadSummary()
		if err != nil {
			return err
		}
		c, err := summary.Completeness(position, book.Side, r, summary.Config().TestDepth)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDrilled: %s\n", ui.FormatCompleteness(c))
		return nil
	},
}

func init() {
	addAtFlag(showCmd)
	rootCmd.AddCommand(showCmd)
}
