package calendar

import "time"

// SchoolHoliday is a fixed school-break range. The ranges are static data
// overlaid on the calendar view; they never affect capacity counting.
type SchoolHoliday struct {
	ID        string    `json:"id,omitempty"`
	Region    string    `json:"region"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Name      string    `json:"name"`
}

func schoolRange(region string, start, end, name string) SchoolHoliday {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return SchoolHoliday{Region: region, StartDate: s, EndDate: e, Name: name}
}

// DefaultSchoolHolidays are the NRW breaks the planner ships with. They are
// seeded into the store on first start and editable there afterwards.
func DefaultSchoolHolidays() []SchoolHoliday {
	return []SchoolHoliday{
		schoolRange("NW", "2023-10-02", "2023-10-14", "Herbstferien"),
		schoolRange("NW", "2023-12-21", "2024-01-05", "Weihnachtsferien"),
		schoolRange("NW", "2024-03-25", "2024-04-06", "Osterferien"),
		schoolRange("NW", "2024-07-08", "2024-08-20", "Sommerferien"),
		schoolRange("NW", "2024-10-14", "2024-10-26", "Herbstferien"),
		schoolRange("NW", "2024-12-23", "2025-01-06", "Weihnachtsferien"),
		schoolRange("NW", "2025-04-14", "2025-04-26", "Osterferien"),
		schoolRange("NW", "2025-07-14", "2025-08-26", "Sommerferien"),
	}
}

// FindSchoolHoliday returns the first range containing d.
func FindSchoolHoliday(ranges []SchoolHoliday, d time.Time) (SchoolHoliday, bool) {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	for _, r := range ranges {
		if !day.Before(r.StartDate) && !day.After(r.EndDate) {
			return r, true
		}
	}
	return SchoolHoliday{}, false
}
