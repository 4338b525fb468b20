// ABOUTME: Repository interfaces for repertoire storage
// ABOUTME: Enables testability and storage backend swapping

package storage

import (
	"time"

	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
)

// Book is a named repertoire built for one side.
type Book struct {
	Name      string            `json:"name" yaml:"name"`
	Side      models.Side       `json:"side" yaml:"side"`
	Positions repertoire.Export `json:"positions" yaml:"positions"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
}

// NewBook snapshots r under name.
func NewBook(name string, side models.Side, r *repertoire.Repertoire) *Book {
	return &Book{
		Name:      name,
		Side:      side,
		Positions: r.Export(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Repertoire rebuilds the book's tree.
func (b *Book) Repertoire() *repertoire.Repertoire {
	return repertoire.Load(b.Positions)
}

// BookRepository defines operations for managing books.
type BookRepository interface {
	SaveRepertoire(book *Book) error
	LoadRepertoire(name string) (*Book, error)
	ListRepertoires() ([]*Book, error)
	DeleteRepertoire(name string) error
}

// ResultsRepository stores the drill statistics of each book.
type ResultsRepository interface {
	SaveResults(book string, data results.Export) error
	// LoadResults returns empty statistics when none were saved.
	LoadResults(book string) (results.Export, error)
}

// DrillRepository keeps the log of finished drill lines.
type DrillRepository interface {
	RecordDrill(d *models.DrillRecord) error
	// ListDrills returns the newest drills first. A limit of 0 returns all.
	ListDrills(book string, limit int) ([]*models.DrillRecord, error)
}

// Repository combines all repository operations with lifecycle management.
type Repository interface {
	BookRepository
	ResultsRepository
	DrillRepository
	Close() error
	Reset() error
	IsReadOnly() bool
}

func emptyResults() results.Export {
	return results.Export{
		White: map[string]results.ExportedRecord{},
		Black: map[string]results.ExportedRecord{},
	}
}
