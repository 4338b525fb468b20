// ABOUTME: Commands that edit the moves of one position
// ABOUTME: Sets main moves, manages alternatives, deletes moves and edits notes

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/spf13/cobra"
)

// addAtFlag registers the --at flag naming a position by the moves leading to it.
func addAtFlag(cmd *cobra.Command) {
	cmd.Flags().String("at", "", "moves leading to the position (e.g., \"e4 e5\"); default is the start")
}

// atPosition returns the FEN named by --at.
func atPosition(cmd *cobra.Command) (string, error) {
	at, _ := cmd.Flags().GetString("at")
	return positionAfter(at)
}

// editMove loads the active book, resolves --at and the recorded move san,
// applies edit and saves the book.
func editMove(cmd *cobra.Command, san string, edit func(r *repertoire.Repertoire, position, move string)) (string, error) {
	book, r, err := loadBook()
	if err != nil {
		return "", err
	}
	position, err := atPosition(cmd)
	if err != nil {
		return "", err
	}
	if !r.ContainsPosition(position) {
		return "", fmt.Errorf("position is not in book '%s'", book.Name)
	}
	move, err := resolveMove(position, san)
	if err != nil {
		return "", err
	}

	if !r.IsOpponentMove(position, move) {
		return "", fmt.Errorf("%s is not recorded at this position; add it with 'repertoire add'", move)
	}

	edit(r, position, move)
	return move, saveBook(book.Side, r)
}

var mainCmd = &cobra.Command{
	Use:   "main <move>",
	Short: "Make a recorded move the main move of a position",
	Long: `Make a recorded move the main move of a position, or clear it with --unset.
Clearing promotes another alternative when one remains.

Examples:
  repertoire main d4
  repertoire main --at "e4 e5" Nc3
  repertoire main --at "e4 e5" --unset Nf3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset, _ := cmd.Flags().GetBool("unset")
		move, err := editMove(cmd, args[0], func(r *repertoire.Repertoire, position, move string) {
			if unset {
				if r.IsMainMove(position, move) {
					r.UnsetMainMove(position)
				}
				return
			}
			r.SetMainMove(position, move)
		})
		if err != nil {
			return err
		}

		if unset {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s is no longer the main move", move))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s is now the main move", move))
		}
		return nil
	},
}

var altCmd = &cobra.Command{
	Use:   "alt <move>",
	Short: "Mark a recorded move as an accepted alternative",
	Long: `Mark a recorded move as an accepted alternative of a position, or
drop it from the repertoire set with --remove. Removed moves stay recorded.

Examples:
  repertoire alt d4
  repertoire alt --at "e4 e5" Bc4
  repertoire alt --at "e4 e5" --remove Bc4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remove, _ := cmd.Flags().GetBool("remove")
		move, err := editMove(cmd, args[0], func(r *repertoire.Repertoire, position, move string) {
			if remove {
				r.RemoveAlternative(position, move)
				return
			}
			r.AddAlternative(position, move)
		})
		if err != nil {
			return err
		}

		if remove {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s removed from the repertoire", move))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s added as an alternative", move))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <move>",
	Aliases: []string{"rm"},
	Short:   "Forget a recorded move",
	Long: `Forget a recorded move of a position. Positions below it are kept.

Examples:
  repertoire delete d4
  repertoire delete --at "e4" c5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		move, err := editMove(cmd, args[0], func(r *repertoire.Repertoire, position, move string) {
			r.DeleteMove(position, move)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Deleted %s", move))
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes [text]",
	Short: "Show or set the notes of a position",
	Long: `Show the notes of a position, or replace them with text.
Use --clear to remove them.

Examples:
  repertoire notes --at "e4 e5 Nf3 Nc6 Bb5" "Ruy Lopez: keep the bishop"
  repertoire notes --at "e4 e5 Nf3 Nc6 Bb5"`,
	Args: cobra.MaximumNArgs(1),
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

		out := cmd.OutOrStdout()
		clear, _ := cmd.Flags().GetBool("clear")
		if len(args) == 0 && !clear {
			notes := r.Notes(position)
			if notes == "" {
				fmt.Fprintln(out, color.New(color.Faint).Sprint("(no notes)"))
				return nil
			}
			fmt.Fprintln(out, notes)
			return nil
		}

		text := ""
		if len(args) == 1 {
			text = args[0]
		}
		r.SetNotes(position, text)
		if err := saveBook(book.Side, r); err != nil {
			return err
		}
		fmt.Fprintln(out, color.GreenString("✓ Notes saved"))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{mainCmd, altCmd, deleteCmd, notesCmd} {
		addAtFlag(cmd)
		rootCmd.AddCommand(cmd)
	}
	mainCmd.Flags().Bool("unset", false, "clear the main move instead of setting it")
	altCmd.Flags().Bool("remove", false, "remove the move from the repertoire set")
	notesCmd.Flags().Bool("clear", false, "remove the notes")
}
