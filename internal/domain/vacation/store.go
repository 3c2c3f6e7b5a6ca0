package vacation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"friscoplan/internal/domain/calendar"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict surfaces a serialization failure between two concurrent
	// admissions; the caller may retry with a fresh snapshot.
	ErrConflict = errors.New("concurrent update conflict")
)

// AdmissionCheck re-runs capacity validation against the snapshot read
// inside the write transaction.
type AdmissionCheck func(existing []Vacation) error

type Store interface {
	ListVacations(ctx context.Context, from, to *time.Time) ([]Vacation, error)
	GetVacation(ctx context.Context, id string) (Vacation, error)
	CreateVacation(ctx context.Context, v Vacation, check AdmissionCheck) (Vacation, error)
	UpdateVacation(ctx context.Context, id string, v Vacation, check AdmissionCheck) (Vacation, error)
	DeleteVacation(ctx context.Context, id string) error
	MaxConcurrent(ctx context.Context, fallback int) (int, error)
	SetMaxConcurrent(ctx context.Context, limit int) error
	ListSchoolHolidays(ctx context.Context) ([]calendar.SchoolHoliday, error)
}

type PgStore struct {
	DB *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

const vacationColumns = `id, worker_id, start_date, end_date, status, created_at, updated_at`

func scanVacation(row pgx.Row) (Vacation, error) {
	var v Vacation
	err := row.Scan(&v.ID, &v.WorkerID, &v.StartDate, &v.EndDate, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vacation{}, ErrNotFound
	}
	return v, err
}

func (s *PgStore) ListVacations(ctx context.Context, from, to *time.Time) ([]Vacation, error) {
	query := `SELECT ` + vacationColumns + ` FROM vacations`
	var args []any
	switch {
	case from != nil && to != nil:
		query += ` WHERE end_date >= $1 AND start_date <= $2`
		args = append(args, *from, *to)
	case from != nil:
		query += ` WHERE end_date >= $1`
		args = append(args, *from)
	case to != nil:
		query += ` WHERE start_date <= $1`
		args = append(args, *to)
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vacation
	for rows.Next() {
		var v Vacation
		if err := rows.Scan(&v.ID, &v.WorkerID, &v.StartDate, &v.EndDate, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PgStore) GetVacation(ctx context.Context, id string) (Vacation, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = $1`, id)
	return scanVacation(row)
}

// CreateVacation admits and inserts in one serializable transaction: the
// snapshot the check runs against cannot be invalidated by a concurrent
// admission without one of the two transactions failing with ErrConflict.
func (s *PgStore) CreateVacation(ctx context.Context, v Vacation, check AdmissionCheck) (Vacation, error) {
	var created Vacation
	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		existing, err := listVacationsTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
      INSERT INTO vacations (worker_id, start_date, end_date, status)
      VALUES ($1,$2,$3,$4)
      RETURNING `+vacationColumns+`
    `, v.WorkerID, v.StartDate, v.EndDate, v.Status)
		created, err = scanVacation(row)
		if err != nil {
			return err
		}
		return appendOutboxEvent(ctx, tx, "vacations", "insert", created.ID)
	})
	return created, err
}

func (s *PgStore) UpdateVacation(ctx context.Context, id string, v Vacation, check AdmissionCheck) (Vacation, error) {
	var updated Vacation
	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		existing, err := listVacationsTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
      UPDATE vacations
      SET worker_id = $1, start_date = $2, end_date = $3, updated_at = now()
      WHERE id = $4
      RETURNING `+vacationColumns+`
    `, v.WorkerID, v.StartDate, v.EndDate, id)
		updated, err = scanVacation(row)
		if err != nil {
			return err
		}
		return appendOutboxEvent(ctx, tx, "vacations", "update", id)
	})
	return updated, err
}

func (s *PgStore) DeleteVacation(ctx context.Context, id string) error {
	return s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM vacations WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return appendOutboxEvent(ctx, tx, "vacations", "delete", id)
	})
}

const settingMaxConcurrent = "max_concurrent"

func (s *PgStore) MaxConcurrent(ctx context.Context, fallback int) (int, error) {
	var limit int
	err := s.DB.QueryRow(ctx, "SELECT value::int FROM settings WHERE key = $1", settingMaxConcurrent).Scan(&limit)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return limit, nil
}

func (s *PgStore) SetMaxConcurrent(ctx context.Context, limit int) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO settings (key, value)
    VALUES ($1, $2::text)
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
  `, settingMaxConcurrent, limit)
	return err
}

func (s *PgStore) ListSchoolHolidays(ctx context.Context) ([]calendar.SchoolHoliday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, region, start_date, end_date, name
    FROM school_holidays
    ORDER BY start_date
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.SchoolHoliday
	for rows.Next() {
		var sh calendar.SchoolHoliday
		if err := rows.Scan(&sh.ID, &sh.Region, &sh.StartDate, &sh.EndDate, &sh.Name); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *PgStore) inSerializableTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return mapSerializationError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapSerializationError(err)
	}
	return nil
}

func listVacationsTx(ctx context.Context, tx pgx.Tx) ([]Vacation, error) {
	rows, err := tx.Query(ctx, `SELECT `+vacationColumns+` FROM vacations ORDER BY start_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vacation
	for rows.Next() {
		var v Vacation
		if err := rows.Scan(&v.ID, &v.WorkerID, &v.StartDate, &v.EndDate, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func appendOutboxEvent(ctx context.Context, tx pgx.Tx, table, op, rowID string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO outbox_events (event_id, table_name, op, row_id)
    VALUES ($1,$2,$3,$4)
  `, uuid.NewString(), table, op, rowID)
	return err
}

func mapSerializationError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return ErrConflict
	}
	return err
}
