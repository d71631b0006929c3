package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order sources.
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	orderedAtLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrInvalidOrder is returned by Create for an order missing its source,
// boat or result.
var ErrInvalidOrder = errors.New("audit: order requires source, boat and result")

// Order is one row order and its outcome.
type Order struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Boat      string    `json:"boat"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	OrderedAt time.Time `json:"ordered_at"`
}

// Filter selects orders. Empty fields match everything.
type Filter struct {
	Source string
	Boat   string
	Result string
	Limit  int // default 50, max 200
	Offset int
}

// ListResult is a page of orders, newest first.
type ListResult struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Repository stores and lists row orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository implements Repository on the row_orders table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates an audit trail on a migrated SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create stores an order. ID and OrderedAt are filled in when empty.
func (r *SQLiteRepository) Create(ctx context.Context, order *Order) error {
	if order.Source == "" || order.Boat == "" || order.Result == "" {
		return ErrInvalidOrder
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.OrderedAt.IsZero() {
		order.OrderedAt = time.Now()
	}
	order.OrderedAt = order.OrderedAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO row_orders (id, source, boat, result, error, request_id, ordered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Source, order.Boat, order.Result,
		nullableString(order.Error), nullableString(order.RequestID),
		order.OrderedAt.Format(orderedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting row order: %w", err)
	}
	return nil
}

// nullableString maps "" to NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns orders matching the filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var (
		conditions []string
		args       []any
	)
	for column, value := range map[string]string{
		"source": filter.Source,
		"boat":   filter.Boat,
		"result": filter.Result,
	} {
		if value != "" {
			conditions = append(conditions, column+" = ?")
			args = append(args, value)
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM row_orders " + where //nolint:gosec // WHERE built from fixed column names and ? placeholders
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting row orders: %w", err)
	}

	query := "SELECT id, source, boat, result, error, request_id, ordered_at FROM row_orders " + //nolint:gosec // see above
		where + " ORDER BY ordered_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying row orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var (
			o           Order
			errText, id sql.NullString
			orderedAt   string
		)
		if err := rows.Scan(&o.ID, &o.Source, &o.Boat, &o.Result, &errText, &id, &orderedAt); err != nil {
			return nil, fmt.Errorf("scanning row order: %w", err)
		}
		o.Error = errText.String
		o.RequestID = id.String

		if o.OrderedAt, err = time.Parse(orderedAtLayout, orderedAt); err != nil {
			return nil, fmt.Errorf("parsing ordered_at %q: %w", orderedAt, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating row orders: %w", err)
	}

	return &ListResult{
		Orders: orders,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
