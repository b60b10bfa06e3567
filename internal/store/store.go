package store

import (
	"context"
	"fmt"
	"strings"
)

// CacheStore persists the slug -> vector mapping between runs.
//
// Load reports found=false when nothing has been persisted yet. Save writes
// every entry of vectors; entries persisted earlier under other slugs may be
// kept (SQLiteStore) or dropped (JSONFileStore), so callers pass the full
// mapping.
type CacheStore interface {
	Load(ctx context.Context) (vectors map[string][]float32, found bool, err error)
	Save(ctx context.Context, vectors map[string][]float32) error
}

// New returns the store for the configured backend.
func New(backend, path string) (CacheStore, error) {
	switch strings.ToLower(backend) {
	case "", "json":
		return NewJSONFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}
