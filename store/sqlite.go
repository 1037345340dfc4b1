package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		stream  TEXT NOT NULL,
		version INTEGER NOT NULL,
		id      TEXT NOT NULL,
		type    TEXT NOT NULL,
		data    TEXT NOT NULL,
		time    TEXT NOT NULL,
		PRIMARY KEY (stream, version)
	);

	CREATE INDEX IF NOT EXISTS idx_events_stream ON events(stream);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds events to a stream with optimistic concurrency.
func (s *SQLiteStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, stream)
	if err != nil {
		return 0, err
	}
	if current != expectedVersion {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, event := range events {
		version++
		event.Stream = stream
		event.Version = version
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream, version, id, type, data, time) VALUES (?, ?, ?, ?, ?, ?)`,
			stream, version, event.ID, event.Type, string(event.Data), event.Time.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// Read returns the stream's events from fromVersion onward.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, id, type, data, time FROM events WHERE stream = ? AND version >= ? ORDER BY version`,
		stream, fromVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		event := &Event{Stream: stream}
		var data, ts string
		if err := rows.Scan(&event.Version, &event.ID, &event.Type, &data, &ts); err != nil {
			return nil, err
		}
		event.Data = []byte(data)
		event.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("store: invalid timestamp %q: %w", ts, err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// StreamVersion returns the current version of a stream, -1 if absent.
func (s *SQLiteStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), -1) FROM events WHERE stream = ?`, stream)
	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

func streamVersionTx(ctx context.Context, tx *sql.Tx, stream string) (int, error) {
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), -1) FROM events WHERE stream = ?`, stream)
	var version int
	err := row.Scan(&version)
	return version, err
}
