// ABOUTME: Repertoire check command
// ABOUTME: Classifies each move of a line against the active book

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/history"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:     "check <moves...>",
	Aliases: []string{"c"},
	Short:   "Check a line against the repertoire",
	Long: `Classify every move of a line: your main move, an accepted alternative,
a known opponent reply, or a move that leaves the repertoire.

Examples:
  repertoire check e4 e5 Nf3 Nc6 Bc4
  repertoire check "d4 d5 c4 e6"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, r, err := loadBook()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		h := history.New()
		deviation := 0
		for i, san := range splitMoves(args) {
			position := h.LatestPosition().FEN
			move, err := engine.ApplyMove(position, san)
			if err != nil {
				return fmt.Errorf("move %d (%s): %w", i+1, san, err)
			}
			ann := r.Evaluate(position, move.Notation, book.Side)
			h.PushAnnotatedMove(move, []models.Annotation{models.NewAnnotation(ann, move.From, move.To)}, -1)

			prefix := fmt.Sprintf("%d.", i/2+1)
			if move.Side == models.Black {
				prefix = fmt.Sprintf("%d...", i/2+1)
			}
			fmt.Fprintf(out, "  %-5s %s\n", prefix, ui.FormatMove(move.Notation, ann))
			if !ann.IsRepertoire() && deviation == 0 {
				deviation = i + 1
			}
		}

		if deviation == 0 {
			fmt.Fprintln(out, color.GreenString("✓ Line is in the repertoire"))
		} else {
			fmt.Fprintln(out, color.YellowString("Line leaves the repertoire at move %d (%s)", (deviation+1)/2, h.Moves()[deviation-1]))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(checkCmd)
}
