package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	DB *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

// ListOutboxEvents pages strictly after the offset; ties on created_at are
// broken by event_id so no event is skipped or replayed.
func (s *PgStore) ListOutboxEvents(ctx context.Context, after Offset, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.Query(ctx, `
    SELECT event_id, table_name, op, row_id, created_at
    FROM outbox_events
    WHERE created_at > $1
       OR (created_at = $1 AND ($2 = '' OR event_id::text > $2))
    ORDER BY created_at, event_id
    LIMIT $3
  `, after.LastEventTime, after.LastEventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.EventID, &event.Table, &event.Op, &event.RowID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *PgStore) GetOffset(ctx context.Context) (Offset, error) {
	var offset Offset
	var lastID *string
	err := s.DB.QueryRow(ctx, `
    SELECT last_event_time, last_event_id::text
    FROM realtime_offsets
    WHERE id = 1
  `).Scan(&offset.LastEventTime, &lastID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offset{}, nil
	}
	if err != nil {
		return Offset{}, err
	}
	if lastID != nil {
		offset.LastEventID = *lastID
	}
	return offset, nil
}

func (s *PgStore) UpdateOffset(ctx context.Context, offset Offset) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO realtime_offsets (id, last_event_time, last_event_id)
    VALUES (1, $1, $2)
    ON CONFLICT (id) DO UPDATE SET last_event_time = EXCLUDED.last_event_time, last_event_id = EXCLUDED.last_event_id
  `, offset.LastEventTime, nullableUUID(offset.LastEventID))
	return err
}

func (s *PgStore) CleanupOutbox(ctx context.Context, before time.Time) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM outbox_events WHERE created_at < $1", before)
	return err
}

func nullableUUID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
