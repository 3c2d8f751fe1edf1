// ABOUTME: Badger-backed record store for embedded key/value deployments.
// ABOUTME: Keys are "<collection>:<id>", values are JSON documents.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

// BadgerStore keeps records in a Badger database.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens or creates a Badger database in dir. An empty dir opens
// an in-memory database.
func OpenBadger(dir string, log logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(log)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	log.WithField("dir", dir).Debug("opened badger store")
	return &BadgerStore{db: db, log: log}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func key(collection, id string) []byte {
	return []byte(collection + ":" + id)
}

func prefix(collection string) []byte {
	return []byte(collection + ":")
}

// Add inserts a record, failing with ErrDuplicateKey if the ID exists.
func (s *BadgerStore) Add(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(collection, rec.ID)
		if _, err := txn.Get(k); err == nil {
			return fmt.Errorf("add %s/%s: %w", collection, rec.ID, ErrDuplicateKey)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(k, rec.Data)
	})
	if errors.Is(err, ErrDuplicateKey) {
		return err
	}
	return wrap("add", collection, err)
}

// Get returns the record with the given ID.
func (s *BadgerStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(collection, id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Record{}, wrap("get", collection, err)
	}
	return Record{ID: id, Data: data}, nil
}

// GetAll returns every record in the collection.
func (s *BadgerStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := s.scan(collection)
	return recs, wrap("get all", collection, err)
}

// GetByField returns records whose top-level string field equals value.
// Badger has no secondary indexes, so this scans the collection.
func (s *BadgerStore) GetByField(ctx context.Context, collection, field, value string) ([]Record, error) {
	if err := ValidateField(field); err != nil {
		return nil, err
	}
	all, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, rec := range all {
		var doc map[string]any
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			s.log.WithError(err).WithField("id", rec.ID).Warn("skipping undecodable record")
			continue
		}
		if v, ok := doc[field].(string); ok && v == value {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Update inserts or replaces a record.
func (s *BadgerStore) Update(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(collection, rec.ID), rec.Data)
	})
	return wrap("update", collection, err)
}

// Delete removes a record if it exists.
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(collection, id))
	})
	return wrap("delete", collection, err)
}

// Clear removes every record in the collection.
func (s *BadgerStore) Clear(ctx context.Context, collection string) error {
	return s.ReplaceAll(ctx, collection, nil)
}

// Count returns the number of records in the collection.
func (s *BadgerStore) Count(ctx context.Context, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := prefix(collection)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, wrap("count", collection, err)
	}
	return n, nil
}

// ReplaceAll swaps the collection's contents in one transaction.
func (s *BadgerStore) ReplaceAll(ctx context.Context, collection string, recs []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		keys, err := collectKeys(txn, prefix(collection))
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for _, rec := range recs {
			if err := txn.Set(key(collection, rec.ID), rec.Data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap("replace all", collection, err)
	}
	s.log.WithFields(logrus.Fields{"collection": collection, "count": len(recs)}).Debug("replaced collection")
	return nil
}

func (s *BadgerStore) scan(collection string) ([]Record, error) {
	var recs []Record
	p := prefix(collection)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id := string(bytes.TrimPrefix(item.KeyCopy(nil), p))
			recs = append(recs, Record{ID: id, Data: val})
		}
		return nil
	})
	return recs, err
}

func collectKeys(txn *badger.Txn, p []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}
