// ABOUTME: Sentinel errors shared by the SQLite and Badger stores
// ABOUTME: Callers match them with errors.Is regardless of backend

package storage

import "errors"

var (
	// ErrNotFound means no book, results or drill exists under the given name.
	ErrNotFound = errors.New("not found")

	// ErrReadOnly means the store was opened without write access.
	ErrReadOnly = errors.New("storage is read-only")
)
