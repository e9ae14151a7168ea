package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/duskborne/internal/storage"
)

const saveColumns = `id::text, area, narrative, completed_events, player_hp, saved_at`

// SaveRepository provides save persistence operations.
type SaveRepository struct {
	db *pgxpool.Pool
}

var _ storage.Store = (*SaveRepository)(nil)

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Save inserts rec or replaces the save with the same ID.
//
// Precondition: rec must be valid.
// Postcondition: Exactly one row holds rec's ID.
func (r *SaveRepository) Save(ctx context.Context, rec storage.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	narrative, events, err := storage.EncodeState(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO saves (id, area, narrative, completed_events, player_hp, saved_at)
		 VALUES ($1::uuid, $2, $3::jsonb, $4::jsonb, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			area = EXCLUDED.area,
			narrative = EXCLUDED.narrative,
			completed_events = EXCLUDED.completed_events,
			player_hp = EXCLUDED.player_hp,
			saved_at = EXCLUDED.saved_at`,
		rec.ID.String(), rec.Area, string(narrative), string(events), rec.PlayerHP, rec.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting save %s: %w", rec.ID, err)
	}
	return nil
}

// Load retrieves a save by ID.
//
// Postcondition: Returns the record, or storage.ErrSaveNotFound.
func (r *SaveRepository) Load(ctx context.Context, id uuid.UUID) (storage.Record, error) {
	row := r.db.QueryRow(ctx, `SELECT `+saveColumns+` FROM saves WHERE id = $1::uuid`, id.String())
	rec, err := scanSave(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, storage.ErrSaveNotFound
	}
	return rec, err
}

// List returns every save, most recently saved first.
//
// Postcondition: Returns a possibly empty slice, or an error.
func (r *SaveRepository) List(ctx context.Context) ([]storage.Record, error) {
	rows, err := r.db.Query(ctx, `SELECT `+saveColumns+` FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		rec, err := scanSave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a save by ID.
//
// Postcondition: Returns storage.ErrSaveNotFound when no row matched.
func (r *SaveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saves WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("deleting save %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrSaveNotFound
	}
	return nil
}

func scanSave(row pgx.Row) (storage.Record, error) {
	var rec storage.Record
	var id string
	var narrative, events []byte
	if err := row.Scan(&id, &rec.Area, &narrative, &events, &rec.PlayerHP, &rec.SavedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, err
		}
		return storage.Record{}, fmt.Errorf("scanning save: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return storage.Record{}, fmt.Errorf("parsing save id %q: %w", id, err)
	}
	rec.ID = parsed
	if err := storage.DecodeState(&rec, narrative, events); err != nil {
		return storage.Record{}, err
	}
	return rec, nil
}
