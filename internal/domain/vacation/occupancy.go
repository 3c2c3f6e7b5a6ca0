package vacation

import (
	"time"

	"friscoplan/internal/domain/calendar"
)

// DayOccupancy describes one calendar day of the month view: how many
// workers are absent, whether the day is saturated, and the overlays the
// dashboard renders (holiday, school break, weekend).
type DayOccupancy struct {
	Date          time.Time `json:"date"`
	Count         int       `json:"count"`
	Limit         int       `json:"limit"`
	Full          bool      `json:"full"`
	Weekend       bool      `json:"weekend"`
	Holiday       string    `json:"holiday,omitempty"`
	SchoolHoliday string    `json:"schoolHoliday,omitempty"`
}

// MonthOccupancy computes one row per day of the given month. Counts are
// reported for every day; the full flag only fires on business days since
// weekends and holidays never consume capacity.
func MonthOccupancy(cal *calendar.Calendar, school []calendar.SchoolHoliday, vacations []Vacation, year int, month time.Month, limit int) []DayOccupancy {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	out := make([]DayOccupancy, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		row := DayOccupancy{
			Date:    d,
			Count:   AbsencesOn(d, vacations, ""),
			Limit:   limit,
			Weekend: calendar.IsWeekend(d),
		}
		if name, ok := cal.HolidayName(d); ok {
			row.Holiday = name
		}
		if sh, ok := calendar.FindSchoolHoliday(school, d); ok {
			row.SchoolHoliday = sh.Name
		}
		row.Full = row.Count >= limit && !row.Weekend && row.Holiday == ""
		out = append(out, row)
	}
	return out
}
