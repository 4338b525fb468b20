// ABOUTME: Tests for storage implementations
// ABOUTME: Runs the repository contract against SQLite and Badger with real databases

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *SQLiteDB {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// testBadger creates a temporary Badger store for testing.
func testBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"), false)
	if err != nil {
		t.Fatalf("failed to create badger store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// backends returns one fresh repository per implementation.
func backends(t *testing.T) map[string]Repository {
	return map[string]Repository{
		"sqlite": testDB(t),
		"badger": testBadger(t),
	}
}

// testBook builds a small white book.
func testBook(t *testing.T, name string) *Book {
	t.Helper()
	r := repertoire.New()
	if err := r.PushLine([]string{"e4", "e5", "Nf3"}, models.White); err != nil {
		t.Fatalf("push line: %v", err)
	}
	r.SetNotes(fen.StartKey, "king's pawn")
	return NewBook(name, models.White, r)
}

func TestNewSQLiteDB(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteDB_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "nested", "path")
	dbPath := filepath.Join(nestedDir, "test.db")

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedDir); os.IsNotExist(err) {
		t.Error("nested directory was not created")
	}
}

func TestReadOnlySQLiteDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := NewReadOnlySQLiteDB(dbPath); err == nil {
		t.Error("expected error opening a missing database read-only")
	}

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("create db: %v", err)
	}
	if err := db.SaveRepertoire(testBook(t, "main")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = db.Close()

	ro, err := NewReadOnlySQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	defer ro.Close()

	if !ro.IsReadOnly() {
		t.Error("expected read-only store")
	}
	if _, err := ro.LoadRepertoire("main"); err != nil {
		t.Errorf("reads should work: %v", err)
	}
	if err := ro.SaveRepertoire(testBook(t, "other")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("got %v, want ErrReadOnly", err)
	}
	if err := ro.Reset(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("got %v, want ErrReadOnly", err)
	}
}

func TestReadOnlyBadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	if _, err := NewBadgerStore(dir, true); err == nil {
		t.Error("expected error opening a missing store read-only")
	}

	store, err := NewBadgerStore(dir, false)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := store.SaveRepertoire(testBook(t, "main")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = store.Close()

	ro, err := NewBadgerStore(dir, true)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	defer ro.Close()

	if _, err := ro.LoadRepertoire("main"); err != nil {
		t.Errorf("reads should work: %v", err)
	}
	if err := ro.RecordDrill(models.NewDrillRecord("main", models.White, "x", 1, nil)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("got %v, want ErrReadOnly", err)
	}
}

func TestSaveLoadRepertoire(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			book := testBook(t, "open games")
			if err := repo.SaveRepertoire(book); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := repo.LoadRepertoire("open games")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Side != models.White {
				t.Errorf("got side %s, want w", got.Side)
			}
			r := got.Repertoire()
			if !r.IsMainMove(fen.StartKey, "e4") {
				t.Error("main move lost")
			}
			if r.Notes(fen.StartKey) != "king's pawn" {
				t.Errorf("notes lost: %q", r.Notes(fen.StartKey))
			}
			if len(r.Positions()) != 4 {
				t.Errorf("expected 4 positions, got %d", len(r.Positions()))
			}
		})
	}
}

func TestSaveRepertoire_Replaces(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRepertoire(testBook(t, "main")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := repo.SaveResults("main", results.New(results.DefaultConfig()).Export()); err != nil {
				t.Fatalf("save results: %v", err)
			}

			empty := NewBook("main", models.Black, repertoire.New())
			if err := repo.SaveRepertoire(empty); err != nil {
				t.Fatalf("replace: %v", err)
			}

			got, err := repo.LoadRepertoire("main")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Side != models.Black || len(got.Positions) != 1 {
				t.Errorf("book not replaced: side %s, %d positions", got.Side, len(got.Positions))
			}

			books, err := repo.ListRepertoires()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(books) != 1 {
				t.Errorf("expected 1 book, got %d", len(books))
			}
		})
	}
}

func TestLoadRepertoire_NotFound(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.LoadRepertoire("missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("got error %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListRepertoires(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"zeta", "alpha", "alpha-sharp"} {
				if err := repo.SaveRepertoire(testBook(t, n)); err != nil {
					t.Fatalf("save %s: %v", n, err)
				}
			}

			books, err := repo.ListRepertoires()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(books) != 3 {
				t.Fatalf("expected 3 books, got %d", len(books))
			}
			if books[0].Name != "alpha" || books[1].Name != "alpha-sharp" || books[2].Name != "zeta" {
				t.Errorf("books not sorted by name: %s, %s, %s", books[0].Name, books[1].Name, books[2].Name)
			}
		})
	}
}

func TestDeleteRepertoire(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"alpha", "alpha-sharp"} {
				if err := repo.SaveRepertoire(testBook(t, n)); err != nil {
					t.Fatalf("save: %v", err)
				}
				if err := repo.RecordDrill(models.NewDrillRecord(n, models.White, "line complete", 2, []string{"e4", "e5"})); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			if err := repo.DeleteRepertoire("alpha"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.LoadRepertoire("alpha"); !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
			drills, err := repo.ListDrills("alpha", 0)
			if err != nil {
				t.Fatalf("list drills: %v", err)
			}
			if len(drills) != 0 {
				t.Errorf("drills should be deleted with the book, got %d", len(drills))
			}

			if _, err := repo.LoadRepertoire("alpha-sharp"); err != nil {
				t.Errorf("other books must survive: %v", err)
			}
			drills, err = repo.ListDrills("alpha-sharp", 0)
			if err != nil || len(drills) != 1 {
				t.Errorf("other drills must survive: %d, %v", len(drills), err)
			}

			if err := repo.DeleteRepertoire("alpha"); !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestResults(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRepertoire(testBook(t, "main")); err != nil {
				t.Fatalf("save: %v", err)
			}

			empty, err := repo.LoadResults("main")
			if err != nil {
				t.Fatalf("load empty: %v", err)
			}
			if len(empty.White) != 0 || len(empty.Black) != 0 {
				t.Error("expected empty results")
			}

			exp := results.Export{
				White: map[string]results.ExportedRecord{
					fen.StartKey: {TestHistory: []float64{2, -1}, HistoryLength: 5},
				},
				Black: map[string]results.ExportedRecord{},
			}
			if err := repo.SaveResults("main", exp); err != nil {
				t.Fatalf("save results: %v", err)
			}

			got, err := repo.LoadResults("main")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			summary := results.Load(got, results.DefaultConfig())
			scores := summary.ResultsFor(fen.StartKey, models.White)
			if len(scores) != 2 || scores[0] != 2 || scores[1] != -1 {
				t.Errorf("unexpected scores %v", scores)
			}
		})
	}
}

func TestDrills(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRepertoire(testBook(t, "main")); err != nil {
				t.Fatalf("save: %v", err)
			}

			base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			for i, outcome := range []string{"first", "second", "third"} {
				d := models.NewDrillRecord("main", models.White, outcome, i+1, []string{"e4", "e5"})
				d.PlayedAt = base.Add(time.Duration(i) * time.Hour)
				if err := repo.RecordDrill(d); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			drills, err := repo.ListDrills("main", 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(drills) != 3 {
				t.Fatalf("expected 3 drills, got %d", len(drills))
			}
			if drills[0].Outcome != "third" || drills[2].Outcome != "first" {
				t.Errorf("drills not newest first: %s ... %s", drills[0].Outcome, drills[2].Outcome)
			}
			if len(drills[0].Line) != 2 || drills[0].Line[0] != "e4" {
				t.Errorf("line lost: %v", drills[0].Line)
			}

			limited, err := repo.ListDrills("main", 2)
			if err != nil {
				t.Fatalf("list limited: %v", err)
			}
			if len(limited) != 2 || limited[0].Outcome != "third" {
				t.Errorf("unexpected limited drills %d", len(limited))
			}
		})
	}
}

func TestReset(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRepertoire(testBook(t, "main")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := repo.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
			books, err := repo.ListRepertoires()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(books) != 0 {
				t.Errorf("expected no books after reset, got %d", len(books))
			}
		})
	}
}
