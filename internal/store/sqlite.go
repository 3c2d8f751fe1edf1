// ABOUTME: SQLite-backed record store.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every collection in one table of JSON documents.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	log    logrus.FieldLogger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(dbPath string, log logrus.FieldLogger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath, log: log}

	if err := s.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log.WithField("path", dbPath).Debug("opened sqlite store")
	return s, nil
}

// DefaultSQLitePath returns the database path inside dataDir.
func DefaultSQLitePath(dataDir string) string {
	return filepath.Join(dataDir, "gymlog.db")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add inserts a record, failing with ErrDuplicateKey if the ID exists.
func (s *SQLiteStore) Add(ctx context.Context, collection string, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("add", collection, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM records WHERE collection = ? AND id = ?`, collection, rec.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("add %s/%s: %w", collection, rec.ID, ErrDuplicateKey)
	case !errors.Is(err, sql.ErrNoRows):
		return wrap("add", collection, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (collection, id, data) VALUES (?, ?, ?)`,
		collection, rec.ID, string(rec.Data)); err != nil {
		return wrap("add", collection, err)
	}
	return wrap("add", collection, tx.Commit())
}

// Get returns the record with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Record{}, wrap("get", collection, err)
	}
	return Record{ID: id, Data: []byte(data)}, nil
}

// GetAll returns every record in the collection.
func (s *SQLiteStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE collection = ?`, collection)
	if err != nil {
		return nil, wrap("get all", collection, err)
	}
	defer func() { _ = rows.Close() }()
	recs, err := scanRecords(rows)
	return recs, wrap("get all", collection, err)
}

// GetByField returns records whose top-level field equals value.
func (s *SQLiteStore) GetByField(ctx context.Context, collection, field, value string) ([]Record, error) {
	if err := ValidateField(field); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE collection = ? AND json_extract(data, '$.' || ?) = ?`,
		collection, field, value)
	if err != nil {
		return nil, wrap("get by field", collection, err)
	}
	defer func() { _ = rows.Close() }()
	recs, err := scanRecords(rows)
	return recs, wrap("get by field", collection, err)
}

// Update inserts or replaces a record.
func (s *SQLiteStore) Update(ctx context.Context, collection string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, rec.ID, string(rec.Data))
	return wrap("update", collection, err)
}

// Delete removes a record if it exists.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	return wrap("delete", collection, err)
}

// Clear removes every record in the collection.
func (s *SQLiteStore) Clear(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection)
	return wrap("clear", collection, err)
}

// Count returns the number of records in the collection.
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, wrap("count", collection, err)
	}
	return n, nil
}

// ReplaceAll swaps the collection's contents in one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, collection string, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("replace all", collection, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return wrap("replace all", collection, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`)
	if err != nil {
		return wrap("replace all", collection, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, collection, rec.ID, string(rec.Data)); err != nil {
			return wrap("replace all", collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("replace all", collection, err)
	}
	s.log.WithFields(logrus.Fields{"collection": collection, "count": len(recs)}).Debug("replaced collection")
	return nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		recs = append(recs, Record{ID: id, Data: []byte(data)})
	}
	return recs, rows.Err()
}
