package cache

import (
	"fmt"
	"io"
	"path/filepath"
)

const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Store is what every backend in this package implements.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the backend of the given kind rooted in dir. The closer
// must be called once the store is no longer used.
func Open(kind, dir string) (Store, io.Closer, error) {
	switch kind {
	case "", KindFile:
		return NewFileStore(filepath.Join(dir, "cache.json")), nopCloser{}, nil
	case KindSQLite:
		s, err := OpenSQLiteStore(filepath.Join(dir, "kiosk.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case KindMemory:
		return NewMemoryStore(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q, valid values: %s, %s, %s", kind, KindFile, KindSQLite, KindMemory)
}
