package shared

import (
	"net/http"
	"time"

	"friscoplan/internal/transport/http/api"
)

type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects field issues so a response can report all of them
// at once instead of failing on the first.
type Validator struct {
	issues []Issue
}

func (v *Validator) Required(field, value string) {
	if value == "" {
		v.issues = append(v.issues, Issue{Field: field, Message: "is required"})
	}
}

// Date parses value when present and records an issue otherwise. A zero
// time is returned for empty or malformed input.
func (v *Validator) Date(field, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	d, err := ParseDate(value)
	if err != nil {
		v.issues = append(v.issues, Issue{Field: field, Message: "must be a date in YYYY-MM-DD form"})
		return time.Time{}
	}
	return d
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.issues = append(v.issues, Issue{Field: field, Message: message})
	}
}

func (v *Validator) Valid() bool {
	return len(v.issues) == 0
}

// Reject writes the collected issues as a 400 and reports whether the
// request was rejected.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if v.Valid() {
		return false
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation", "request validation failed",
		map[string]any{"issues": v.issues}, requestID)
	return true
}
