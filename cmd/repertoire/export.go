// ABOUTME: Export and import commands for single books
// ABOUTME: Writes a book and optionally its drill statistics as JSON

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/storage"
	"github.com/spf13/cobra"
)

// bookFile is the JSON document written by export.
type bookFile struct {
	Name      string          `json:"name"`
	Side      models.Side     `json:"side"`
	Positions json.RawMessage `json:"positions"`
	Results   json.RawMessage `json:"results,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export a book as JSON",
	Long: `Export the active book as JSON, to stdout or a file.
Use --results to include its drill statistics.

Examples:
  repertoire export > main.json
  repertoire export --book sicilian --results --output sicilian.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		book, r, err := loadBook()
		if err != nil {
			return err
		}

		positions, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode book: %w", err)
		}
		doc := bookFile{Name: book.Name, Side: book.Side, Positions: positions}

		if withResults, _ := cmd.Flags().GetBool("results"); withResults {
			summary, err := loadSummary()
			if err != nil {
				return err
			}
			if doc.Results, err = summary.MarshalJSON(); err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode book: %w", err)
		}
		data = append(data, '\n')

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // exported books are meant to be shared
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Exported %s to %s", book.Name, output))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Aliases: []string{"i"},
	Short:   "Import a book exported as JSON",
	Long: `Import a book written by 'repertoire export'. Use '-' to read stdin.
The book keeps its exported name unless --book is given.
Existing books are only replaced with --force.

Examples:
  repertoire import main.json
  repertoire import --book backup-main --force main.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var doc bookFile
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse book: %w", err)
		}
		if len(doc.Positions) == 0 {
			return fmt.Errorf("file has no positions")
		}

		name := doc.Name
		if bookFlag != "" {
			name = bookFlag
		}
		if err := models.ValidateBookName(name); err != nil {
			return err
		}
		side, err := models.ParseSide(string(doc.Side))
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := db.LoadRepertoire(name); err == nil && !force {
			return fmt.Errorf("book '%s' already exists; use --force to replace it", name)
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to load book: %w", err)
		}

		r, err := repertoire.FromJSON(doc.Positions)
		if err != nil {
			return err
		}
		if err := db.SaveRepertoire(storage.NewBook(name, side, r)); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}

		if len(doc.Results) > 0 {
			summary, err := results.FromJSON(doc.Results, scoringConfig())
			if err != nil {
				return err
			}
			if err := db.SaveResults(name, summary.Export()); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Imported %s (%s, %d positions)", name, side.Name(), len(r.Positions())))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().Bool("results", false, "include drill statistics")
	importCmd.Flags().Bool("force", false, "replace an existing book")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
