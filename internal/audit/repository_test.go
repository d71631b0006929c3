package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/harbour/internal/infrastructure/database"
	"github.com/nerrad567/harbour/migrations"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "audit.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreate_FillsIDAndTime(t *testing.T) {
	repo := setupTestRepo(t)

	order := &Order{Source: SourceCLI, Boat: "pequod", Result: "ok"}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if order.ID == "" {
		t.Error("ID was not generated")
	}
	if order.OrderedAt.IsZero() || order.OrderedAt.Location() != time.UTC {
		t.Errorf("OrderedAt = %v, want non-zero UTC", order.OrderedAt)
	}
}

func TestCreate_RequiresFields(t *testing.T) {
	repo := setupTestRepo(t)

	for _, o := range []*Order{
		{Boat: "pequod", Result: "ok"},
		{Source: SourceAPI, Result: "ok"},
		{Source: SourceAPI, Boat: "pequod"},
	} {
		if err := repo.Create(context.Background(), o); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Create(%+v) error = %v, want ErrInvalidOrder", o, err)
		}
	}
}

func TestCreate_UnknownSourceRejected(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Create(context.Background(), &Order{Source: "carrier-pigeon", Boat: "pequod", Result: "ok"})
	if err == nil {
		t.Error("Create() with unknown source should violate the CHECK constraint")
	}
}

func TestList_FiltersAndPaginates(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)

	orders := []Order{
		{Source: SourceCLI, Boat: "pequod", Result: "ok"},
		{Source: SourceAPI, Boat: "pequod", Result: "ok", RequestID: "req-1"},
		{Source: SourceAPI, Boat: "pequod", Result: "no_rowing_boat", Error: "captain has no rowing boat"},
		{Source: SourceAPI, Boat: "rachel", Result: "ok"},
	}
	for i := range orders {
		orders[i].OrderedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, &orders[i]); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 4 || len(all.Orders) != 4 || all.Limit != defaultLimit {
		t.Fatalf("List() = total %d, %d orders, limit %d", all.Total, len(all.Orders), all.Limit)
	}
	if all.Orders[0].Boat != "rachel" {
		t.Errorf("newest order boat = %q, want rachel", all.Orders[0].Boat)
	}

	api, err := repo.List(ctx, Filter{Source: SourceAPI, Boat: "pequod"})
	if err != nil {
		t.Fatalf("List(api, pequod) error = %v", err)
	}
	if api.Total != 2 {
		t.Errorf("api/pequod total = %d, want 2", api.Total)
	}
	if api.Orders[0].Error != "captain has no rowing boat" {
		t.Errorf("Error = %q", api.Orders[0].Error)
	}
	if api.Orders[1].RequestID != "req-1" {
		t.Errorf("RequestID = %q", api.Orders[1].RequestID)
	}

	page, err := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List(page) error = %v", err)
	}
	if page.Total != 4 || len(page.Orders) != 1 || page.Orders[0].Result != "no_rowing_boat" {
		t.Errorf("page = %+v", page)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := setupTestRepo(t)

	res, err := repo.List(context.Background(), Filter{Limit: 10_000, Offset: -5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want %d/0", res.Limit, res.Offset, maxLimit)
	}
	if res.Orders == nil {
		t.Error("Orders should be an empty slice, not nil")
	}
}
