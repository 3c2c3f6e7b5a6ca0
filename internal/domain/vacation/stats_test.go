package vacation

import (
	"testing"
	"time"

	"friscoplan/internal/domain/calendar"
	"friscoplan/internal/domain/roster"
)

func testWorkers() []roster.Worker {
	return []roster.Worker{
		{ID: "w1", Name: "Anna Becker"},
		{ID: "w2", Name: "Jonas Weber"},
		{ID: "w3", Name: "Miriam Schulz"},
	}
}

func TestComputeStats(t *testing.T) {
	today := date(2024, time.July, 10)
	vacations := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 8), EndDate: date(2024, time.July, 12)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 22), EndDate: date(2024, time.July, 26)},
		{ID: "v3", WorkerID: "w3", StartDate: date(2024, time.June, 3), EndDate: date(2024, time.June, 7)},
	}

	stats := ComputeStats(testWorkers(), vacations, today)
	if stats.TotalWorkers != 3 {
		t.Errorf("TotalWorkers = %d, want 3", stats.TotalWorkers)
	}
	if stats.CurrentlyOnVacation != 1 {
		t.Errorf("CurrentlyOnVacation = %d, want 1", stats.CurrentlyOnVacation)
	}
	if stats.AvailableWorkers != 2 {
		t.Errorf("AvailableWorkers = %d, want 2", stats.AvailableWorkers)
	}
	if stats.FutureVacations != 1 {
		t.Errorf("FutureVacations = %d, want 1", stats.FutureVacations)
	}
}

func TestComputeStatsBoundaryDays(t *testing.T) {
	vacations := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 10)},
	}

	onStart := ComputeStats(testWorkers(), vacations, date(2024, time.July, 10))
	if onStart.CurrentlyOnVacation != 1 {
		t.Errorf("single-day vacation must count on its own day, got %d", onStart.CurrentlyOnVacation)
	}

	after := ComputeStats(testWorkers(), vacations, date(2024, time.July, 11))
	if after.CurrentlyOnVacation != 0 {
		t.Errorf("vacation must not count after its end, got %d", after.CurrentlyOnVacation)
	}
	if after.FutureVacations != 0 {
		t.Errorf("past vacation is not future, got %d", after.FutureVacations)
	}
}

func TestUpcoming(t *testing.T) {
	today := date(2024, time.July, 10)
	vacations := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 22), EndDate: date(2024, time.July, 26)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 8), EndDate: date(2024, time.July, 12)},
		{ID: "v3", WorkerID: "w3", StartDate: date(2024, time.June, 3), EndDate: date(2024, time.June, 7)},
		{ID: "v4", WorkerID: "missing", StartDate: date(2024, time.August, 5), EndDate: date(2024, time.August, 9)},
	}

	got := Upcoming(testWorkers(), vacations, today, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 upcoming vacations, got %d", len(got))
	}
	if got[0].ID != "v2" || got[1].ID != "v1" || got[2].ID != "v4" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].WorkerName != "Jonas Weber" {
		t.Errorf("expected resolved worker name, got %q", got[0].WorkerName)
	}
	if got[2].WorkerName != "Unbekannt" {
		t.Errorf("expected fallback name for unknown worker, got %q", got[2].WorkerName)
	}

	capped := Upcoming(testWorkers(), vacations, today, 2)
	if len(capped) != 2 {
		t.Fatalf("expected limit to cap the list at 2, got %d", len(capped))
	}
}

func TestMonthOccupancy(t *testing.T) {
	cal := calendar.MustNew(calendar.DefaultRegion)
	school := calendar.DefaultSchoolHolidays()
	vacations := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
	}

	rows := MonthOccupancy(cal, school, vacations, 2024, time.July, 2)
	if len(rows) != 31 {
		t.Fatalf("expected 31 rows for July, got %d", len(rows))
	}

	byDay := map[int]DayOccupancy{}
	for _, row := range rows {
		byDay[row.Date.Day()] = row
	}

	if byDay[11].Count != 2 || !byDay[11].Full {
		t.Errorf("July 11 should be saturated: %+v", byDay[11])
	}
	if byDay[9].Count != 0 || byDay[9].Full {
		t.Errorf("July 9 should be empty: %+v", byDay[9])
	}
	if !byDay[13].Weekend || byDay[13].Full {
		t.Errorf("July 13 is a Saturday and never full: %+v", byDay[13])
	}
	if byDay[15].SchoolHoliday != "Sommerferien" {
		t.Errorf("July 15 falls in Sommerferien: %+v", byDay[15])
	}
}

func TestMonthOccupancyHolidayNeverFull(t *testing.T) {
	cal := calendar.MustNew(calendar.DefaultRegion)
	vacations := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.October, 3), EndDate: date(2024, time.October, 3)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.October, 3), EndDate: date(2024, time.October, 3)},
	}

	rows := MonthOccupancy(cal, nil, vacations, 2024, time.October, 2)
	for _, row := range rows {
		if row.Date.Day() == 3 {
			if row.Holiday != "Tag der Dt. Einheit" {
				t.Fatalf("expected holiday name on Oct 3, got %q", row.Holiday)
			}
			if row.Full {
				t.Fatal("a public holiday must never be reported full")
			}
			if row.Count != 2 {
				t.Fatalf("count still reports absences, got %d", row.Count)
			}
		}
	}
}
