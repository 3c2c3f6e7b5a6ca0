package vacation

import (
	"errors"
	"testing"
	"time"

	"friscoplan/internal/domain/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testValidator() *Validator {
	return NewValidator(calendar.MustNew(calendar.DefaultRegion))
}

func ruleErr(t *testing.T, err error) *RuleError {
	t.Helper()
	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuleError, got %v", err)
	}
	return re
}

// Two workers already absent 2024-07-10..12, limit 2: a third overlapping
// proposal must be rejected with the first conflicting day.
func TestValidateCapacityExceeded(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
	}

	err := testValidator().Validate(Proposal{
		WorkerID:  "w3",
		StartDate: date(2024, time.July, 11),
		EndDate:   date(2024, time.July, 11),
	}, existing, 2)

	re := ruleErr(t, err)
	if re.Code != CodeCapacityExceeded {
		t.Fatalf("expected capacity_exceeded, got %s", re.Code)
	}
	if !re.Date.Equal(date(2024, time.July, 11)) {
		t.Fatalf("expected conflict on 2024-07-11, got %s", re.Date.Format("2006-01-02"))
	}
	if re.Limit != 2 {
		t.Fatalf("expected limit 2, got %d", re.Limit)
	}
}

// Weekend days never count, so a Saturday/Sunday range passes even when
// the weekday capacity is already saturated.
func TestValidateWeekendAlwaysAdmitted(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 8), EndDate: date(2024, time.July, 14)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 8), EndDate: date(2024, time.July, 14)},
	}

	err := testValidator().Validate(Proposal{
		WorkerID:  "w3",
		StartDate: date(2024, time.July, 13),
		EndDate:   date(2024, time.July, 14),
	}, existing, 2)
	if err != nil {
		t.Fatalf("weekend-only proposal must be admitted, got %v", err)
	}
}

func TestValidateHolidayNeverCounts(t *testing.T) {
	// Oct 3 2024 is Tag der Dt. Einheit, a Thursday.
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.October, 3), EndDate: date(2024, time.October, 3)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.October, 3), EndDate: date(2024, time.October, 3)},
	}

	err := testValidator().Validate(Proposal{
		WorkerID:  "w3",
		StartDate: date(2024, time.October, 3),
		EndDate:   date(2024, time.October, 3),
	}, existing, 2)
	if err != nil {
		t.Fatalf("holiday proposal must be admitted, got %v", err)
	}
}

func TestValidateInvalidRange(t *testing.T) {
	err := testValidator().Validate(Proposal{
		WorkerID:  "w1",
		StartDate: date(2024, time.August, 5),
		EndDate:   date(2024, time.August, 1),
	}, nil, 2)

	if re := ruleErr(t, err); re.Code != CodeInvalidRange {
		t.Fatalf("expected invalid_range, got %s", re.Code)
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		proposal Proposal
		field    string
	}{
		{
			name:     "missing worker",
			proposal: Proposal{StartDate: date(2024, time.July, 1), EndDate: date(2024, time.July, 2)},
			field:    "workerId",
		},
		{
			name:     "missing start",
			proposal: Proposal{WorkerID: "w1", EndDate: date(2024, time.July, 2)},
			field:    "startDate",
		},
		{
			name:     "missing end",
			proposal: Proposal{WorkerID: "w1", StartDate: date(2024, time.July, 1)},
			field:    "endDate",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			re := ruleErr(t, testValidator().Validate(tc.proposal, nil, 2))
			if re.Code != CodeMissingField {
				t.Fatalf("expected missing_field, got %s", re.Code)
			}
			if re.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, re.Field)
			}
		})
	}
}

// Editing a vacation back onto its own dates must not conflict with itself.
func TestValidateSelfExclusion(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
	}

	withExclude := testValidator().Validate(Proposal{
		WorkerID:  "w1",
		StartDate: date(2024, time.July, 10),
		EndDate:   date(2024, time.July, 12),
		ExcludeID: "v1",
	}, existing, 2)
	if withExclude != nil {
		t.Fatalf("edit onto own dates must pass with exclusion, got %v", withExclude)
	}

	withoutExclude := testValidator().Validate(Proposal{
		WorkerID:  "w1",
		StartDate: date(2024, time.July, 10),
		EndDate:   date(2024, time.July, 12),
	}, existing, 2)
	if withoutExclude == nil {
		t.Fatal("without exclusion the same edit must conflict")
	}
}

// The first violating day is reported, scanning start to end.
func TestValidateReportsEarliestConflict(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 9), EndDate: date(2024, time.July, 12)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.July, 9), EndDate: date(2024, time.July, 12)},
	}

	re := ruleErr(t, testValidator().Validate(Proposal{
		WorkerID:  "w3",
		StartDate: date(2024, time.July, 8),
		EndDate:   date(2024, time.July, 12),
	}, existing, 2))
	if !re.Date.Equal(date(2024, time.July, 9)) {
		t.Fatalf("expected earliest conflict 2024-07-09, got %s", re.Date.Format("2006-01-02"))
	}
}

// Raising the limit never turns an admitted proposal into a rejection.
func TestValidateMonotonicInLimit(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.June, 3), EndDate: date(2024, time.June, 7)},
		{ID: "v2", WorkerID: "w2", StartDate: date(2024, time.June, 5), EndDate: date(2024, time.June, 11)},
	}
	proposal := Proposal{
		WorkerID:  "w3",
		StartDate: date(2024, time.June, 4),
		EndDate:   date(2024, time.June, 6),
	}

	v := testValidator()
	for limit := 1; limit <= 5; limit++ {
		if v.Validate(proposal, existing, limit) == nil {
			if err := v.Validate(proposal, existing, limit+1); err != nil {
				t.Fatalf("admitted at limit %d but rejected at %d: %v", limit, limit+1, err)
			}
		}
	}
}

func TestValidateIsPure(t *testing.T) {
	existing := []Vacation{
		{ID: "v1", WorkerID: "w1", StartDate: date(2024, time.July, 10), EndDate: date(2024, time.July, 12)},
	}
	snapshot := make([]Vacation, len(existing))
	copy(snapshot, existing)
	proposal := Proposal{
		WorkerID:  "w2",
		StartDate: date(2024, time.July, 10),
		EndDate:   date(2024, time.July, 12),
	}

	v := testValidator()
	first := v.Validate(proposal, existing, 1)
	second := v.Validate(proposal, existing, 1)
	if (first == nil) != (second == nil) {
		t.Fatal("identical inputs must yield identical outcomes")
	}
	for i := range existing {
		if existing[i] != snapshot[i] {
			t.Fatal("existing vacations must not be mutated")
		}
	}
}

func TestAbsencesOn(t *testing.T) {
	vacations := []Vacation{
		{ID: "v1", StartDate: date(2024, time.July, 1), EndDate: date(2024, time.July, 5)},
		{ID: "v2", StartDate: date(2024, time.July, 5), EndDate: date(2024, time.July, 9)},
		{ID: "v3", StartDate: date(2024, time.July, 20), EndDate: date(2024, time.July, 22)},
	}

	if got := AbsencesOn(date(2024, time.July, 5), vacations, ""); got != 2 {
		t.Fatalf("expected 2 absences on boundary day, got %d", got)
	}
	if got := AbsencesOn(date(2024, time.July, 5), vacations, "v2"); got != 1 {
		t.Fatalf("expected 1 absence with v2 excluded, got %d", got)
	}
	if got := AbsencesOn(date(2024, time.July, 15), vacations, ""); got != 0 {
		t.Fatalf("expected 0 absences, got %d", got)
	}
}
