// ABOUTME: Repertoire drill command
// ABOUTME: Plays weighted opponent replies and scores the moves typed in reply

package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/drill"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/ui"
	"github.com/spf13/cobra"
)

var drillCmd = &cobra.Command{
	Use:     "drill",
	Aliases: []string{"d"},
	Short:   "Drill the repertoire interactively",
	Long: `Drill the active book. The opponent plays recorded replies, favouring the
branches you know least; answer each with your move in SAN.

Type 'hint' to see the expected moves and 'quit' to stop.
Results are saved after every finished line.

Examples:
  repertoire drill
  repertoire drill --book sicilian --lines 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, _ := cmd.Flags().GetInt("lines")
		if lines < 1 {
			return fmt.Errorf("--lines must be at least 1")
		}

		book, r, err := loadBook()
		if err != nil {
			return err
		}
		summary, err := loadSummary()
		if err != nil {
			return err
		}

		session := drill.NewSession(r, summary, book.Side,
			drill.WithEngine(engine),
			drill.WithLogger(slog.Default()))

		out := cmd.OutOrStdout()
		in := bufio.NewReader(cmd.InOrStdin())
		fmt.Fprintf(out, "Drilling %s as %s. Type 'hint' for help, 'quit' to stop.\n",
			color.GreenString(book.Name), book.Side.Name())

		passed := 0
		played := 0
		for played < lines {
			fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprintf("Line %d", played+1))
			stop, err := drillLine(session, in, out)
			if err != nil {
				return err
			}
			if res := session.Result(); res != nil {
				played++
				if res.Streak > 0 {
					passed++
				}
				if err := recordLine(book.Name, book.Side, session); err != nil {
					return err
				}
				if res.Streak == 0 && !stop {
					fmt.Fprintln(out, color.YellowString("Nothing to drill in this book yet."))
					break
				}
			}
			if stop {
				break
			}
		}

		fmt.Fprintf(out, "\n%d of %d lines passed\n", passed, played)
		return nil
	},
}

func init() {
	drillCmd.Flags().IntP("lines", "n", 5, "number of lines to drill")
	rootCmd.AddCommand(drillCmd)
}

// drillLine plays one line of session. It returns true when the player asked to stop.
func drillLine(session *drill.Session, in *bufio.Reader, out io.Writer) (bool, error) {
	turn, err := session.Start()
	if err != nil {
		return false, err
	}
	if turn.Reply != nil {
		printReply(out, turn)
	}

	for !session.Done() {
		fmt.Fprint(out, "Your move: ")
		input, err := in.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil && input == "" {
			fmt.Fprintln(out)
			return true, nil
		}

		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "q", "exit":
			return true, nil
		case "hint", "?":
			fmt.Fprintf(out, "  expected: %s\n", strings.Join(session.Hint(), ", "))
			continue
		}

		expected := session.Hint()
		turn, err := session.Play(input)
		if err != nil {
			fmt.Fprintln(out, color.RedString("  %v", err))
			continue
		}
		fmt.Fprintf(out, "  %s\n", ui.FormatMove(turn.Move.Notation, turn.Annotation))
		if turn.Annotation == models.BreaksRepertoire || turn.Annotation == models.NotFound {
			fmt.Fprintf(out, "  expected: %s\n", strings.Join(expected, ", "))
		}
		if turn.Reply != nil {
			printReply(out, turn)
		}
	}

	res := session.Result()
	line := ui.FormatMoveList(session.History().Moves(), true)
	if res.Streak > 0 {
		fmt.Fprintln(out, color.GreenString("✓ %s (%+d): %s", res.Outcome, res.Streak, line))
	} else {
		fmt.Fprintln(out, color.RedString("✗ %s (%+d): %s", res.Outcome, res.Streak, line))
	}
	return false, nil
}

func printReply(out io.Writer, turn *drill.Turn) {
	fmt.Fprintf(out, "Opponent plays %s\n", color.CyanString(turn.Reply.Notation))
}

// recordLine saves the statistics and the log entry of a finished line.
func recordLine(name string, side models.Side, session *drill.Session) error {
	res := session.Result()
	if res == nil || res.Streak == 0 {
		return nil
	}
	if err := db.SaveResults(name, session.Summary().Export()); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	d := models.NewDrillRecord(name, side, res.Outcome, res.Streak, session.History().Moves())
	if err := db.RecordDrill(d); err != nil {
		return fmt.Errorf("failed to record drill: %w", err)
	}
	return nil
}
