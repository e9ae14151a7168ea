// Package sqlite provides a single-file save store for local play.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cory-johannsen/duskborne/internal/storage"
)

// timeLayout is fixed-width so saved_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	id               TEXT PRIMARY KEY,
	area             TEXT NOT NULL,
	narrative        TEXT NOT NULL,
	completed_events TEXT NOT NULL,
	player_hp        REAL NOT NULL,
	saved_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
`

// Store is a storage.Store backed by a SQLite database file.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema exists.
//
// Precondition: path must be writable.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening save database %q: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating save tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, rec storage.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	narrative, events, err := storage.EncodeState(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (id, area, narrative, completed_events, player_hp, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			area = excluded.area,
			narrative = excluded.narrative,
			completed_events = excluded.completed_events,
			player_hp = excluded.player_hp,
			saved_at = excluded.saved_at
	`, rec.ID.String(), rec.Area, string(narrative), string(events), rec.PlayerHP, rec.SavedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("saving %s: %w", rec.ID, err)
	}
	return nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (storage.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, area, narrative, completed_events, player_hp, saved_at
		FROM saves WHERE id = ?`, id.String())
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrSaveNotFound
	}
	return rec, err
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, area, narrative, completed_events, player_hp, saved_at
		FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if n == 0 {
		return storage.ErrSaveNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (storage.Record, error) {
	var rec storage.Record
	var id, narrative, events, stamp string
	if err := row.Scan(&id, &rec.Area, &narrative, &events, &rec.PlayerHP, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, err
		}
		return storage.Record{}, fmt.Errorf("scanning save: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return storage.Record{}, fmt.Errorf("parsing save id %q: %w", id, err)
	}
	rec.ID = parsed
	if rec.SavedAt, err = time.Parse(timeLayout, stamp); err != nil {
		return storage.Record{}, fmt.Errorf("parsing save time %q: %w", stamp, err)
	}
	if err := storage.DecodeState(&rec, []byte(narrative), []byte(events)); err != nil {
		return storage.Record{}, err
	}
	return rec, nil
}
