// ABOUTME: PGN reading for repertoire import
// ABOUTME: Extracts SAN mainlines from PGN text, parsing many files concurrently

package rules

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/notnil/chess"
	"golang.org/x/sync/errgroup"
)

// maxParallelFiles bounds concurrent PGN file parsing.
const maxParallelFiles = 4

// ParsePGN returns the mainline of every game in r as SAN move lists.
// Games without moves are skipped.
func ParsePGN(r io.Reader) ([][]string, error) {
	scanner := chess.NewScanner(r)

	var lines [][]string
	for scanner.Scan() {
		game := scanner.Next()
		moves := game.Moves()
		if len(moves) == 0 {
			continue
		}
		positions := game.Positions()
		line := make([]string, len(moves))
		for i, m := range moves {
			line[i] = chess.AlgebraicNotation{}.Encode(positions[i], m)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("scan pgn: %w", err)
	}
	return lines, nil
}

// ParsePGNFiles parses each file concurrently. Results keep the order of paths.
func ParsePGNFiles(ctx context.Context, paths []string) ([][][]string, error) {
	results := make([][][]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path) //nolint:gosec // paths come from the command line
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			lines, err := ParsePGN(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			results[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
