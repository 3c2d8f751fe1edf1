// ABOUTME: Record store contract shared by every storage substrate.
// ABOUTME: Collections hold JSON documents keyed by string ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no record has the requested ID.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned by Add when the ID already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidField is returned by GetByField for field names that are not plain identifiers.
	ErrInvalidField = errors.New("invalid field name")

	// ErrAmbiguousID is returned by ResolveID when a prefix matches several records.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
)

// StorageError wraps a failure of the underlying substrate.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Record is one stored document.
type Record struct {
	ID   string
	Data []byte // JSON document
}

// Store is a collection-oriented document store. Each call is atomic for a
// single collection; nothing spans collections.
type Store interface {
	// Add inserts a record. Fails with ErrDuplicateKey if the ID exists.
	Add(ctx context.Context, collection string, rec Record) error
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)
	// GetAll returns every record in the collection in no guaranteed order.
	GetAll(ctx context.Context, collection string) ([]Record, error)
	// GetByField returns records whose top-level string field equals value.
	GetByField(ctx context.Context, collection, field, value string) ([]Record, error)
	// Update inserts or replaces the record with the same ID.
	Update(ctx context.Context, collection string, rec Record) error
	// Delete removes a record. Deleting a missing ID is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Clear removes every record in the collection.
	Clear(ctx context.Context, collection string) error
	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)
	// ReplaceAll atomically replaces the collection's contents with recs.
	ReplaceAll(ctx context.Context, collection string, recs []Record) error

	Close() error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateField checks that a field name is safe to use in a query.
func ValidateField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gymlog")
}

func wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Collection: collection, Err: err}
}

// ResolveID returns the ID in collection equal to idOrPrefix, or the only ID
// starting with it. Short prefixes are what the CLI prints.
func ResolveID(ctx context.Context, s Store, collection, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("resolve %s id: %w", collection, ErrNotFound)
	}
	if _, err := s.Get(ctx, collection, idOrPrefix); err == nil {
		return idOrPrefix, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	recs, err := s.GetAll(ctx, collection)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range recs {
		if !strings.HasPrefix(r.ID, idOrPrefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("resolve %s id %q: %w", collection, idOrPrefix, ErrAmbiguousID)
		}
		match = r.ID
	}
	if match == "" {
		return "", fmt.Errorf("resolve %s id %q: %w", collection, idOrPrefix, ErrNotFound)
	}
	return match, nil
}
