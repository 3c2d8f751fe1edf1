// ABOUTME: Copies records between storage backends.
// ABOUTME: Used when switching the configured backend between sqlite and badger.
package store

import (
	"context"
	"fmt"
	"os"
)

// CopySummary counts the records copied per collection.
type CopySummary struct {
	Collections map[string]int
}

// Total returns the number of records copied across all collections.
func (s *CopySummary) Total() int {
	n := 0
	for _, c := range s.Collections {
		n += c
	}
	return n
}

// Copy writes every record of the given collections from src to dst. Each
// destination collection is replaced in one batch, so dst should be empty
// or disposable before calling this function.
func Copy(ctx context.Context, src, dst Store, collections []string) (*CopySummary, error) {
	summary := &CopySummary{Collections: make(map[string]int, len(collections))}

	for _, coll := range collections {
		recs, err := src.GetAll(ctx, coll)
		if err != nil {
			return summary, fmt.Errorf("list source %s: %w", coll, err)
		}
		if len(recs) == 0 {
			continue
		}
		if err := dst.ReplaceAll(ctx, coll, recs); err != nil {
			return summary, fmt.Errorf("copy %s: %w", coll, err)
		}
		summary.Collections[coll] = len(recs)
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
