package logbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/harbour/internal/boat"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// recordTimeout bounds a RecordSail insert, which has no caller context.
	recordTimeout = 5 * time.Second

	// sailedAtLayout is fixed-width so that sailed_at sorts lexically.
	sailedAtLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteRepository implements Repository on the sail_log table.
type SQLiteRepository struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ Repository        = (*SQLiteRepository)(nil)
	_ boat.SailRecorder = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository creates a logbook on an open, migrated SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a sail into the logbook.
//
// Returns:
//   - error: ErrBoatRequired, ErrDuplicateEntry, or the underlying database error
func (r *SQLiteRepository) Record(ctx context.Context, event boat.SailEvent) error {
	if event.Boat == "" {
		return ErrBoatRequired
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sail_log (id, boat, sequence, sailed_at) VALUES (?, ?, ?, ?)",
		event.ID.String(),
		event.Boat,
		int64(event.Sequence), //nolint:gosec // sequences never approach MaxInt64
		event.SailedAt.UTC().Format(sailedAtLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, event.ID)
		}
		return fmt.Errorf("inserting sail: %w", err)
	}

	return nil
}

// RecordSail implements boat.SailRecorder.
func (r *SQLiteRepository) RecordSail(event boat.SailEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	return r.Record(ctx, event)
}

// List returns recent entries for a boat, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - boatName: Boat to list
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteRepository) List(ctx context.Context, boatName string, limit int) ([]Entry, error) {
	if boatName == "" {
		return nil, ErrBoatRequired
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, boat, sequence, sailed_at
		 FROM sail_log
		 WHERE boat = ?
		 ORDER BY sailed_at DESC, rowid DESC
		 LIMIT ?`,
		boatName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying logbook: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry    Entry
			id       string
			seq      int64
			sailedAt string
		)
		if err := rows.Scan(&id, &entry.Boat, &seq, &sailedAt); err != nil {
			return nil, fmt.Errorf("scanning logbook entry: %w", err)
		}

		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing entry id %q: %w", id, err)
		}
		if entry.SailedAt, err = time.Parse(sailedAtLayout, sailedAt); err != nil {
			return nil, fmt.Errorf("parsing sailed_at %q: %w", sailedAt, err)
		}
		entry.Sequence = uint64(seq) //nolint:gosec // CHECK (sequence > 0) in schema

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating logbook: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded sails for a boat.
func (r *SQLiteRepository) Count(ctx context.Context, boatName string) (int, error) {
	if boatName == "" {
		return 0, ErrBoatRequired
	}

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sail_log WHERE boat = ?", boatName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting logbook: %w", err)
	}
	return count, nil
}
