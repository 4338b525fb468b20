// ABOUTME: SQLite storage implementation for repertoire data
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/results"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Repository with a local SQLite database.
type SQLiteDB struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewReadOnlySQLiteDB opens an existing database and rejects every write.
func NewReadOnlySQLiteDB(path string) (*SQLiteDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s, err := NewSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	s.readOnly = true
	return s, nil
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS books (
			name TEXT PRIMARY KEY,
			side TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS results (
			book TEXT PRIMARY KEY REFERENCES books(name) ON DELETE CASCADE,
			data TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS drills (
			id TEXT PRIMARY KEY,
			book TEXT NOT NULL REFERENCES books(name) ON DELETE CASCADE,
			side TEXT NOT NULL,
			outcome TEXT NOT NULL,
			streak INTEGER NOT NULL,
			line TEXT NOT NULL,
			played_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_drills_book ON drills(book);
		CREATE INDEX IF NOT EXISTS idx_drills_played_at ON drills(played_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// IsReadOnly reports whether writes are rejected.
func (s *SQLiteDB) IsReadOnly() bool {
	return s.readOnly
}

// Reset clears all data from the database.
func (s *SQLiteDB) Reset() error {
	if s.readOnly {
		return ErrReadOnly
	}
	_, err := s.db.Exec("DELETE FROM drills; DELETE FROM results; DELETE FROM books;")
	return err
}

// SaveRepertoire creates or replaces a book.
func (s *SQLiteDB) SaveRepertoire(book *Book) error {
	if s.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(book.Positions)
	if err != nil {
		return fmt.Errorf("encode book: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO books (name, side, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET side = excluded.side, data = excluded.data, updated_at = excluded.updated_at`,
		book.Name, string(book.Side), string(data), book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

// LoadRepertoire retrieves a book by name.
func (s *SQLiteDB) LoadRepertoire(name string) (*Book, error) {
	row := s.db.QueryRow("SELECT name, side, data, updated_at FROM books WHERE name = ?", name)
	return s.scanBook(row)
}

// ListRepertoires returns all books sorted by name.
func (s *SQLiteDB) ListRepertoires() ([]*Book, error) {
	rows, err := s.db.Query("SELECT name, side, data, updated_at FROM books ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []*Book
	for rows.Next() {
		book, err := s.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// DeleteRepertoire removes a book (results and drills cascade delete automatically).
func (s *SQLiteDB) DeleteRepertoire(name string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	res, err := s.db.Exec("DELETE FROM books WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteDB) scanBook(row rowScanner) (*Book, error) {
	var book Book
	var side, data string
	err := row.Scan(&book.Name, &side, &data, &book.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan book: %w", err)
	}
	book.Side = models.Side(side)
	if err := json.Unmarshal([]byte(data), &book.Positions); err != nil {
		return nil, fmt.Errorf("decode book %s: %w", book.Name, err)
	}
	return &book, nil
}

// SaveResults creates or replaces the statistics of a book.
func (s *SQLiteDB) SaveResults(book string, exp results.Export) error {
	if s.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO results (book, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(book) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		book, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

// LoadResults retrieves the statistics of a book.
func (s *SQLiteDB) LoadResults(book string) (results.Export, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM results WHERE book = ?", book).Scan(&data)
	if err == sql.ErrNoRows {
		return emptyResults(), nil
	}
	if err != nil {
		return results.Export{}, fmt.Errorf("query results: %w", err)
	}
	exp := emptyResults()
	if err := json.Unmarshal([]byte(data), &exp); err != nil {
		return results.Export{}, fmt.Errorf("decode results: %w", err)
	}
	return exp, nil
}

// RecordDrill appends a finished drill to the log.
func (s *SQLiteDB) RecordDrill(d *models.DrillRecord) error {
	if s.readOnly {
		return ErrReadOnly
	}
	_, err := s.db.Exec(
		`INSERT INTO drills (id, book, side, outcome, streak, line, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.Book, string(d.Side), d.Outcome, d.Streak,
		strings.Join(d.Line, " "), d.PlayedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert drill: %w", err)
	}
	return nil
}

// ListDrills returns the drills of a book, newest first.
func (s *SQLiteDB) ListDrills(book string, limit int) ([]*models.DrillRecord, error) {
	query := `SELECT id, book, side, outcome, streak, line, played_at
		 FROM drills WHERE book = ? ORDER BY played_at DESC`
	args := []any{book}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query drills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drills []*models.DrillRecord
	for rows.Next() {
		var idStr, side, line string
		var d models.DrillRecord
		if err := rows.Scan(&idStr, &d.Book, &side, &d.Outcome, &d.Streak, &line, &d.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan drill: %w", err)
		}
		d.ID, _ = uuid.Parse(idStr)
		d.Side = models.Side(side)
		d.Line = strings.Fields(line)
		drills = append(drills, &d)
	}
	return drills, rows.Err()
}
