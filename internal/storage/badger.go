// ABOUTME: Badger key-value storage implementation for repertoire data
// ABOUTME: Stores books, results and drills as JSON values under key prefixes

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/results"
)

const (
	bookPrefix    = "book:"
	resultsPrefix = "results:"
	drillPrefix   = "drill:"
)

// BadgerStore implements Repository with an embedded Badger database.
type BadgerStore struct {
	db       *badger.DB
	path     string
	readOnly bool
}

// Compile-time check that BadgerStore implements Repository.
var _ Repository = (*BadgerStore)(nil)

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewBadgerStore opens or creates a Badger database in dir.
func NewBadgerStore(dir string, readOnly bool) (*BadgerStore, error) {
	if readOnly {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("open badger database: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: slog.Default()}).
		WithReadOnly(readOnly)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db, path: dir, readOnly: readOnly}, nil
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// IsReadOnly reports whether writes are rejected.
func (b *BadgerStore) IsReadOnly() bool {
	return b.readOnly
}

// Reset clears all data from the database.
func (b *BadgerStore) Reset() error {
	if b.readOnly {
		return ErrReadOnly
	}
	return b.db.DropAll()
}

func (b *BadgerStore) put(key string, v any) error {
	if b.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (b *BadgerStore) get(key string, v any) error {
	return b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// scan decodes every value under prefix in key order.
func (b *BadgerStore) scan(prefix string, fn func(val []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveRepertoire creates or replaces a book.
func (b *BadgerStore) SaveRepertoire(book *Book) error {
	return b.put(bookPrefix+book.Name, book)
}

// LoadRepertoire retrieves a book by name.
func (b *BadgerStore) LoadRepertoire(name string) (*Book, error) {
	var book Book
	if err := b.get(bookPrefix+name, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// ListRepertoires returns all books sorted by name.
func (b *BadgerStore) ListRepertoires() ([]*Book, error) {
	var books []*Book
	err := b.scan(bookPrefix, func(val []byte) error {
		var book Book
		if err := json.Unmarshal(val, &book); err != nil {
			return fmt.Errorf("decode book: %w", err)
		}
		books = append(books, &book)
		return nil
	})
	return books, err
}

// DeleteRepertoire removes a book with its results and drills.
func (b *BadgerStore) DeleteRepertoire(name string) error {
	if b.readOnly {
		return ErrReadOnly
	}
	if _, err := b.LoadRepertoire(name); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		keys := [][]byte{[]byte(bookPrefix + name), []byte(resultsPrefix + name)}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(drillPrefix + name + ":")
		it := txn.NewIterator(opts)
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveResults creates or replaces the statistics of a book.
func (b *BadgerStore) SaveResults(book string, exp results.Export) error {
	return b.put(resultsPrefix+book, exp)
}

// LoadResults retrieves the statistics of a book.
func (b *BadgerStore) LoadResults(book string) (results.Export, error) {
	exp := emptyResults()
	err := b.get(resultsPrefix+book, &exp)
	if errors.Is(err, ErrNotFound) {
		return emptyResults(), nil
	}
	if err != nil {
		return results.Export{}, fmt.Errorf("load results: %w", err)
	}
	return exp, nil
}

// drillKey sorts drills of a book by time.
func drillKey(d *models.DrillRecord) string {
	return fmt.Sprintf("%s%s:%020d:%s", drillPrefix, d.Book, d.PlayedAt.UnixNano(), d.ID)
}

// RecordDrill appends a finished drill to the log.
func (b *BadgerStore) RecordDrill(d *models.DrillRecord) error {
	return b.put(drillKey(d), d)
}

// ListDrills returns the drills of a book, newest first.
func (b *BadgerStore) ListDrills(book string, limit int) ([]*models.DrillRecord, error) {
	var drills []*models.DrillRecord
	err := b.scan(drillPrefix+book+":", func(val []byte) error {
		var d models.DrillRecord
		if err := json.Unmarshal(val, &d); err != nil {
			return fmt.Errorf("decode drill: %w", err)
		}
		drills = append(drills, &d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(drills)
	if limit > 0 && len(drills) > limit {
		drills = drills[:limit]
	}
	return drills, nil
}
