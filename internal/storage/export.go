// ABOUTME: Backup and restore of repertoire data
// ABOUTME: Uses a versioned YAML document covering books, results and drills

package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/results"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// backupTool identifies backups written by this program.
const backupTool = "repertoire"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string        `yaml:"version"`
	ExportedAt time.Time     `yaml:"exported_at"`
	Tool       string        `yaml:"tool"`
	Books      []BookBackup  `yaml:"books"`
	Drills     []DrillBackup `yaml:"drills"`
}

// BookBackup represents a book and its statistics in the backup format.
type BookBackup struct {
	Book    `yaml:",inline"`
	Results results.Export `yaml:"results"`
}

// DrillBackup represents a drill record in the backup format.
type DrillBackup struct {
	ID       string    `yaml:"id"`
	Book     string    `yaml:"book"`
	Side     string    `yaml:"side"`
	Outcome  string    `yaml:"outcome"`
	Streak   int       `yaml:"streak"`
	Line     []string  `yaml:"line,flow"`
	PlayedAt time.Time `yaml:"played_at"`
}

// ExportToYAML exports all data to YAML format.
func ExportToYAML(repo Repository) ([]byte, error) {
	books, err := repo.ListRepertoires()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       backupTool,
		Books:      make([]BookBackup, len(books)),
		Drills:     []DrillBackup{},
	}

	for i, book := range books {
		res, err := repo.LoadResults(book.Name)
		if err != nil {
			return nil, fmt.Errorf("load results for %s: %w", book.Name, err)
		}
		backup.Books[i] = BookBackup{Book: *book, Results: res}

		drills, err := repo.ListDrills(book.Name, 0)
		if err != nil {
			return nil, fmt.Errorf("list drills for %s: %w", book.Name, err)
		}
		for _, d := range drills {
			backup.Drills = append(backup.Drills, DrillBackup{
				ID:       d.ID.String(),
				Book:     d.Book,
				Side:     string(d.Side),
				Outcome:  d.Outcome,
				Streak:   d.Streak,
				Line:     d.Line,
				PlayedAt: d.PlayedAt,
			})
		}
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML imports data from YAML format. Existing books with the same
// name are replaced.
func ImportFromYAML(repo Repository, data []byte) error {
	if repo.IsReadOnly() {
		return ErrReadOnly
	}

	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != backupTool {
		return fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, backupTool)
	}

	for _, bb := range backup.Books {
		if err := models.ValidateBookName(bb.Name); err != nil {
			return fmt.Errorf("book %q: %w", bb.Name, err)
		}
		book := bb.Book
		if err := repo.SaveRepertoire(&book); err != nil {
			return fmt.Errorf("save book %s: %w", bb.Name, err)
		}
		if err := repo.SaveResults(bb.Name, bb.Results); err != nil {
			return fmt.Errorf("save results for %s: %w", bb.Name, err)
		}
	}

	for _, entry := range backup.Drills {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return fmt.Errorf("invalid drill ID %s: %w", entry.ID, err)
		}
		d := &models.DrillRecord{
			ID:       id,
			Book:     entry.Book,
			Side:     models.Side(entry.Side),
			Outcome:  entry.Outcome,
			Streak:   entry.Streak,
			Line:     entry.Line,
			PlayedAt: entry.PlayedAt,
		}
		if err := repo.RecordDrill(d); err != nil {
			return fmt.Errorf("record drill %s: %w", entry.ID, err)
		}
	}

	return nil
}
