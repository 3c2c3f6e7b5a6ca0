package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
	CreateWorker(ctx context.Context, name, department string) (Worker, error)
	DeleteWorker(ctx context.Context, id string) error
	WorkerExists(ctx context.Context, id string) (bool, error)
}

type PgStore struct {
	DB *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

func (s *PgStore) ListWorkers(ctx context.Context) ([]Worker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, department, created_at
    FROM workers
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Department, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PgStore) CreateWorker(ctx context.Context, name, department string) (Worker, error) {
	var created Worker
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
      INSERT INTO workers (name, department)
      VALUES ($1,$2)
      RETURNING id, name, department, created_at
    `, name, department)
		if err := row.Scan(&created.ID, &created.Name, &created.Department, &created.CreatedAt); err != nil {
			return err
		}
		return appendOutboxEvent(ctx, tx, "workers", "insert", created.ID)
	})
	return created, err
}

// DeleteWorker removes the worker; their vacations go with them via the
// foreign key cascade, so a vacations change event is emitted as well.
func (s *PgStore) DeleteWorker(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM workers WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := appendOutboxEvent(ctx, tx, "workers", "delete", id); err != nil {
			return err
		}
		return appendOutboxEvent(ctx, tx, "vacations", "delete", id)
	})
}

func (s *PgStore) WorkerExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM workers WHERE id = $1", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PgStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func appendOutboxEvent(ctx context.Context, tx pgx.Tx, table, op, rowID string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO outbox_events (event_id, table_name, op, row_id)
    VALUES ($1,$2,$3,$4)
  `, uuid.NewString(), table, op, rowID)
	return err
}
