// ABOUTME: Shared helpers for commands that work on one book
// ABOUTME: Resolves the active book, loads and saves it, and walks move lists to positions

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harper/repertoire/internal/config"
	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/rules"
	"github.com/harper/repertoire/internal/storage"
)

var engine rules.Engine = rules.NewStandard()

// currentBook returns the book named by --book, the config, or the default.
func currentBook() string {
	if bookFlag != "" {
		return bookFlag
	}
	if appConfig != nil {
		return appConfig.GetBook()
	}
	return config.DefaultBook
}

// scoringConfig returns the configured scoring parameters.
func scoringConfig() results.Config {
	if appConfig != nil {
		return appConfig.GetScoring()
	}
	return results.DefaultConfig()
}

// loadBook returns the active book and its tree.
func loadBook() (*storage.Book, *repertoire.Repertoire, error) {
	name := currentBook()
	book, err := db.LoadRepertoire(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("book '%s' not found; add a line first with 'repertoire add'", name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load book: %w", err)
	}
	r := book.Repertoire()
	r.SetEngine(engine)
	return book, r, nil
}

// loadOrCreateBook returns the active book's side and tree. A missing book
// starts empty and is built for sideStr.
func loadOrCreateBook(sideStr string) (models.Side, *repertoire.Repertoire, error) {
	name := currentBook()
	if err := models.ValidateBookName(name); err != nil {
		return "", nil, err
	}
	book, err := db.LoadRepertoire(name)
	switch {
	case err == nil:
		r := book.Repertoire()
		r.SetEngine(engine)
		return book.Side, r, nil
	case errors.Is(err, storage.ErrNotFound):
		side, err := models.ParseSide(sideStr)
		if err != nil {
			return "", nil, err
		}
		r := repertoire.New()
		r.SetEngine(engine)
		return side, r, nil
	default:
		return "", nil, fmt.Errorf("failed to load book: %w", err)
	}
}

// saveBook stores r as the active book.
func saveBook(side models.Side, r *repertoire.Repertoire) error {
	if err := db.SaveRepertoire(storage.NewBook(currentBook(), side, r)); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

// loadSummary returns the drill statistics of the active book.
func loadSummary() (*results.Summary, error) {
	data, err := db.LoadResults(currentBook())
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return results.Load(data, scoringConfig()), nil
}

// splitMoves accepts moves as separate arguments or space separated strings.
func splitMoves(args []string) []string {
	var moves []string
	for _, a := range args {
		moves = append(moves, strings.Fields(a)...)
	}
	return moves
}

// positionAfter plays moves from the start position and returns the resulting FEN.
func positionAfter(moves string) (string, error) {
	position := fen.StartPosition
	for i, san := range strings.Fields(moves) {
		move, err := engine.ApplyMove(position, san)
		if err != nil {
			return "", fmt.Errorf("move %d (%s): %w", i+1, san, err)
		}
		position = move.PositionAfter
	}
	return position, nil
}

// resolveMove returns the canonical SAN of a move played at position.
func resolveMove(position, san string) (string, error) {
	move, err := engine.ApplyMove(position, san)
	if err != nil {
		return "", err
	}
	return move.Notation, nil
}
