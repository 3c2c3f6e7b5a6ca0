package vacation

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests run against a real Postgres. Point TEST_DATABASE_URL at a
// migrated, disposable database to enable them.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()
	for _, table := range []string{"outbox_events", "vacations", "workers", "settings"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("resetting %s: %v", table, err)
		}
	}
	return pool
}

func insertWorker(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(),
		"INSERT INTO workers (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		t.Fatalf("inserting worker: %v", err)
	}
	return id
}

func TestPgStoreCreateGetDelete(t *testing.T) {
	pool := testPool(t)
	store := NewPgStore(pool)
	ctx := context.Background()

	workerID := insertWorker(t, pool, "Anna")
	admitAll := func([]Vacation) error { return nil }

	created, err := store.CreateVacation(ctx, Vacation{
		WorkerID:  workerID,
		StartDate: date(2024, 7, 8),
		EndDate:   date(2024, 7, 12),
		Status:    StatusApproved,
	}, admitAll)
	if err != nil {
		t.Fatalf("CreateVacation: %v", err)
	}
	if created.ID == "" || created.Status != StatusApproved {
		t.Fatalf("unexpected created vacation %+v", created)
	}

	got, err := store.GetVacation(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetVacation: %v", err)
	}
	if got.WorkerID != workerID {
		t.Fatalf("unexpected worker %q", got.WorkerID)
	}

	var events int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM outbox_events WHERE table_name = 'vacations' AND op = 'insert'").Scan(&events); err != nil {
		t.Fatal(err)
	}
	if events != 1 {
		t.Fatalf("expected one insert outbox event, got %d", events)
	}

	if err := store.DeleteVacation(ctx, created.ID); err != nil {
		t.Fatalf("DeleteVacation: %v", err)
	}
	if _, err := store.GetVacation(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPgStoreCreateRejectedByCheck(t *testing.T) {
	pool := testPool(t)
	store := NewPgStore(pool)
	ctx := context.Background()

	workerID := insertWorker(t, pool, "Anna")

	wantErr := &RuleError{Code: CodeCapacityExceeded, Date: date(2024, 7, 11), Limit: 2}
	_, err := store.CreateVacation(ctx, Vacation{
		WorkerID:  workerID,
		StartDate: date(2024, 7, 8),
		EndDate:   date(2024, 7, 12),
		Status:    StatusApproved,
	}, func([]Vacation) error { return wantErr })

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Code != CodeCapacityExceeded {
		t.Fatalf("expected the check error back, got %v", err)
	}

	all, err := store.ListVacations(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatal("rejected vacation must not be persisted")
	}
}

func TestPgStoreListVacationsWindow(t *testing.T) {
	pool := testPool(t)
	store := NewPgStore(pool)
	ctx := context.Background()

	workerID := insertWorker(t, pool, "Anna")
	admitAll := func([]Vacation) error { return nil }

	for _, r := range [][2]time.Time{
		{date(2024, 7, 8), date(2024, 7, 12)},
		{date(2024, 8, 1), date(2024, 8, 5)},
	} {
		if _, err := store.CreateVacation(ctx, Vacation{
			WorkerID: workerID, StartDate: r[0], EndDate: r[1], Status: StatusApproved,
		}, admitAll); err != nil {
			t.Fatalf("CreateVacation: %v", err)
		}
	}

	from := date(2024, 7, 1)
	to := date(2024, 7, 31)
	july, err := store.ListVacations(ctx, &from, &to)
	if err != nil {
		t.Fatal(err)
	}
	if len(july) != 1 {
		t.Fatalf("expected one July vacation, got %d", len(july))
	}

	all, err := store.ListVacations(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two vacations, got %d", len(all))
	}
}

func TestPgStoreMaxConcurrentRoundTrip(t *testing.T) {
	pool := testPool(t)
	store := NewPgStore(pool)
	ctx := context.Background()

	limit, err := store.MaxConcurrent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if limit != 2 {
		t.Fatalf("expected fallback 2, got %d", limit)
	}

	if err := store.SetMaxConcurrent(ctx, 4); err != nil {
		t.Fatal(err)
	}
	limit, err = store.MaxConcurrent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if limit != 4 {
		t.Fatalf("expected persisted 4, got %d", limit)
	}
}
