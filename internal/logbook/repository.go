package logbook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/harbour/internal/boat"
)

// Sentinel errors for logbook operations.
var (
	// ErrBoatRequired is returned when an entry or query has no boat name.
	ErrBoatRequired = errors.New("logbook: boat is required")

	// ErrDuplicateEntry is returned when an entry with the same ID already exists.
	ErrDuplicateEntry = errors.New("logbook: entry already exists")
)

// Entry is one recorded sail.
type Entry struct {
	ID       uuid.UUID `json:"id"`
	Boat     string    `json:"boat"`
	Sequence uint64    `json:"sequence"`
	SailedAt time.Time `json:"sailed_at"`
}

// Repository stores and retrieves logbook entries.
type Repository interface {
	// Record stores a single sail.
	Record(ctx context.Context, event boat.SailEvent) error

	// List returns the most recent entries for a boat, newest first.
	List(ctx context.Context, boatName string, limit int) ([]Entry, error)

	// Count returns how many sails are recorded for a boat.
	Count(ctx context.Context, boatName string) (int, error)
}
