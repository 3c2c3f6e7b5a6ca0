package vacation

import (
	"fmt"
	"time"

	"friscoplan/internal/domain/calendar"
)

// Rule violation codes returned by Validate.
const (
	CodeMissingField     = "missing_field"
	CodeInvalidRange     = "invalid_range"
	CodeCapacityExceeded = "capacity_exceeded"
	CodeUnknownWorker    = "unknown_worker"
)

// RuleError is a structured admission failure. Date and Limit are set for
// capacity violations, Field for missing input.
type RuleError struct {
	Code  string
	Field string
	Date  time.Time
	Limit int
}

func (e *RuleError) Error() string {
	switch e.Code {
	case CodeMissingField:
		return fmt.Sprintf("missing required field %s", e.Field)
	case CodeInvalidRange:
		return "end date before start date"
	case CodeCapacityExceeded:
		return fmt.Sprintf("capacity exceeded on %s, max allowed: %d", e.Date.Format("2006-01-02"), e.Limit)
	case CodeUnknownWorker:
		return "unknown worker"
	default:
		return e.Code
	}
}

// Validator decides whether a proposed vacation range can be admitted
// without exceeding the concurrent-absence limit on any business day.
type Validator struct {
	Calendar *calendar.Calendar
}

func NewValidator(cal *calendar.Calendar) *Validator {
	return &Validator{Calendar: cal}
}

// Validate scans the proposal day by day in chronological order. Weekends
// and public holidays never count toward capacity. The first business day
// on which the count of other absences already reaches maxConcurrent is
// rejected immediately, so the reported date is deterministic. Pure: no
// input is mutated and nothing is persisted.
func (v *Validator) Validate(p Proposal, existing []Vacation, maxConcurrent int) error {
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.StartDate.After(p.EndDate) {
		return &RuleError{Code: CodeInvalidRange}
	}
	if p.WorkerID == "" {
		return &RuleError{Code: CodeMissingField, Field: "workerId"}
	}
	if p.StartDate.IsZero() {
		return &RuleError{Code: CodeMissingField, Field: "startDate"}
	}
	if p.EndDate.IsZero() {
		return &RuleError{Code: CodeMissingField, Field: "endDate"}
	}

	for d := day(p.StartDate); !d.After(day(p.EndDate)); d = d.AddDate(0, 0, 1) {
		if calendar.IsWeekend(d) || v.Calendar.IsHoliday(d) {
			continue
		}
		if AbsencesOn(d, existing, p.ExcludeID) >= maxConcurrent {
			return &RuleError{Code: CodeCapacityExceeded, Date: d, Limit: maxConcurrent}
		}
	}
	return nil
}

// AbsencesOn counts the vacations whose inclusive range contains d,
// skipping the vacation identified by excludeID.
func AbsencesOn(d time.Time, vacations []Vacation, excludeID string) int {
	target := day(d)
	count := 0
	for _, v := range vacations {
		if excludeID != "" && v.ID == excludeID {
			continue
		}
		if !target.Before(day(v.StartDate)) && !target.After(day(v.EndDate)) {
			count++
		}
	}
	return count
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
