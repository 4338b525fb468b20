// ABOUTME: Data migration between repertoire storage backends
// ABOUTME: Copies books, results and drills from source to destination repository

package storage

import (
	"fmt"
	"os"
	"slices"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Books  int
	Drills int
}

// MigrateData copies all data from src to dst storage.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	if dst.IsReadOnly() {
		return nil, ErrReadOnly
	}
	summary := &MigrateSummary{}

	books, err := src.ListRepertoires()
	if err != nil {
		return nil, fmt.Errorf("list source books: %w", err)
	}

	for _, book := range books {
		if err := dst.SaveRepertoire(book); err != nil {
			return nil, fmt.Errorf("save book %q: %w", book.Name, err)
		}
		summary.Books++

		res, err := src.LoadResults(book.Name)
		if err != nil {
			return nil, fmt.Errorf("load results for %q: %w", book.Name, err)
		}
		if err := dst.SaveResults(book.Name, res); err != nil {
			return nil, fmt.Errorf("save results for %q: %w", book.Name, err)
		}

		drills, err := src.ListDrills(book.Name, 0)
		if err != nil {
			return nil, fmt.Errorf("list drills for %q: %w", book.Name, err)
		}
		// Oldest first so the destination log keeps its order.
		slices.Reverse(drills)
		for _, d := range drills {
			if err := dst.RecordDrill(d); err != nil {
				return nil, fmt.Errorf("record drill for %q: %w", book.Name, err)
			}
			summary.Drills++
		}
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
