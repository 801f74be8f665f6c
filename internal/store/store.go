// Package store is the local key-value storage behind the saved gallery.
//
// Every backend stores opaque byte values under string keys. Reads return
// ok=false for absent keys; writes report failure through the error.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// ErrInvalidKey is returned for empty keys or keys with path separators.
var ErrInvalidKey = errors.New("store: invalid key")

// Store is a single-process key-value store.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Drivers understood by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	Path   string // sqlite database file
	Dir    string // file driver directory
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, expandHome(opts.Path))
	case DriverFile:
		return OpenFile(expandHome(opts.Dir))
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}
}

// Ensure writes an empty value under key when nothing is stored there yet.
func Ensure(ctx context.Context, s Store, key string) error {
	_, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.Put(ctx, key, []byte{})
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
