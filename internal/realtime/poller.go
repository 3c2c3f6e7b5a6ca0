package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Event is one committed change pulled from the outbox table.
type Event struct {
	EventID   string    `json:"eventId"`
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	RowID     string    `json:"rowId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Offset marks the last event already broadcast, persisted so a restart
// does not replay history.
type Offset struct {
	LastEventTime time.Time
	LastEventID   string
}

type OutboxStore interface {
	ListOutboxEvents(ctx context.Context, after Offset, limit int) ([]Event, error)
	GetOffset(ctx context.Context) (Offset, error)
	UpdateOffset(ctx context.Context, offset Offset) error
	CleanupOutbox(ctx context.Context, before time.Time) error
}

type envelope struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	RowID     string    `json:"rowId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Poller drains the outbox on an interval and fans committed changes out
// through the hub. Clients treat every event as a cache-invalidation
// signal and re-fetch the affected collection.
type Poller struct {
	Store     OutboxStore
	Hub       *Hub
	Interval  time.Duration
	BatchSize int
}

func NewPoller(store OutboxStore, hub *Hub, interval time.Duration, batchSize int) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Poller{Store: store, Hub: hub, Interval: interval, BatchSize: batchSize}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	offset, err := p.Store.GetOffset(ctx)
	if err != nil {
		slog.Warn("realtime offset load failed, starting from epoch", "err", err)
	}
	if offset.LastEventTime.IsZero() {
		offset.LastEventTime = time.Unix(0, 0).UTC()
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			offset = p.drain(ctx, offset)
		}
	}
}

func (p *Poller) drain(ctx context.Context, offset Offset) Offset {
	tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	events, err := p.Store.ListOutboxEvents(tickCtx, offset, p.BatchSize)
	if err != nil {
		slog.Warn("realtime outbox poll failed", "err", err)
		return offset
	}
	if len(events) == 0 {
		return offset
	}

	for _, event := range events {
		offset.LastEventTime = event.CreatedAt
		offset.LastEventID = event.EventID
		payload, err := json.Marshal(envelope{
			Type:      "table_changed",
			Table:     event.Table,
			Op:        event.Op,
			RowID:     event.RowID,
			CreatedAt: event.CreatedAt,
		})
		if err != nil {
			continue
		}
		p.Hub.Broadcast(payload, Subscription{Table: event.Table})
	}

	if err := p.Store.UpdateOffset(tickCtx, offset); err != nil {
		slog.Warn("realtime offset update failed", "err", err)
		return offset
	}
	if err := p.Store.CleanupOutbox(tickCtx, offset.LastEventTime.Add(-24*time.Hour)); err != nil {
		slog.Warn("realtime outbox cleanup failed", "err", err)
	}
	return offset
}
