// Package memorystorage provides the in-memory variant of the document
// store, used when no storage file is configured and in tests.
package memorystorage

import (
	"github.com/avmusatov/tunebase/internal/db/jsondb"
)

// MemoryStorage reuses the jsondb collections without a backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}

// Close is a no-op: there is nothing to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
