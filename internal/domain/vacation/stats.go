package vacation

import (
	"sort"
	"time"

	"friscoplan/internal/domain/roster"
)

// Stats are the derived dashboard numbers, recomputed from a fresh
// snapshot on every read.
type Stats struct {
	TotalWorkers        int `json:"totalWorkers"`
	CurrentlyOnVacation int `json:"currentlyOnVacation"`
	AvailableWorkers    int `json:"availableWorkers"`
	FutureVacations     int `json:"futureVacations"`
}

type UpcomingVacation struct {
	Vacation
	WorkerName string `json:"workerName"`
}

// ComputeStats derives the dashboard numbers for the given day. A worker
// counts as on vacation when today falls inside any of their ranges;
// future vacations are those starting strictly after today.
func ComputeStats(workers []roster.Worker, vacations []Vacation, today time.Time) Stats {
	now := day(today)

	current := 0
	future := 0
	for _, v := range vacations {
		if !now.Before(day(v.StartDate)) && !now.After(day(v.EndDate)) {
			current++
		}
		if day(v.StartDate).After(now) {
			future++
		}
	}

	return Stats{
		TotalWorkers:        len(workers),
		CurrentlyOnVacation: current,
		AvailableWorkers:    len(workers) - current,
		FutureVacations:     future,
	}
}

// Upcoming returns the current-or-future vacations sorted by start date,
// capped at limit, with worker names resolved from the roster.
func Upcoming(workers []roster.Worker, vacations []Vacation, today time.Time, limit int) []UpcomingVacation {
	now := day(today)
	names := make(map[string]string, len(workers))
	for _, w := range workers {
		names[w.ID] = w.Name
	}

	var out []UpcomingVacation
	for _, v := range vacations {
		if day(v.EndDate).Before(now) {
			continue
		}
		name, ok := names[v.WorkerID]
		if !ok {
			name = "Unbekannt"
		}
		out = append(out, UpcomingVacation{Vacation: v, WorkerName: name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
