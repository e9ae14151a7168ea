// Package storage defines the save record and the store contract shared by
// the SQLite and PostgreSQL backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/duskborne/internal/game/narrative"
)

// ErrSaveNotFound is returned when a save lookup yields no results.
var ErrSaveNotFound = errors.New("save not found")

// Record is one saved game.
type Record struct {
	ID              uuid.UUID          `json:"id"`
	Area            string             `json:"area"`
	Narrative       narrative.Snapshot `json:"narrative"`
	CompletedEvents []string           `json:"completed_events"`
	PlayerHP        float64            `json:"player_hp"`
	SavedAt         time.Time          `json:"saved_at"`
}

// Validate checks the fields every store requires.
//
// Postcondition: Returns nil iff ID is set and Area is non-empty.
func (r Record) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("save record: id must be set")
	}
	if r.Area == "" {
		return fmt.Errorf("save record %s: area must not be empty", r.ID)
	}
	return nil
}

// Store persists save records.
type Store interface {
	// Save inserts rec or replaces the record with the same ID.
	Save(ctx context.Context, rec Record) error
	// Load returns the record with id, or ErrSaveNotFound.
	Load(ctx context.Context, id uuid.UUID) (Record, error)
	// List returns every record, most recently saved first.
	List(ctx context.Context) ([]Record, error)
	// Delete removes the record with id, or returns ErrSaveNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
