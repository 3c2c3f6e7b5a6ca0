package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-07-11", want: "2024-07-11"},
		{in: "2024-07-11T09:30:00Z", want: "2024-07-11"},
		{in: "2024-02-29", want: "2024-02-29"},
		{in: "11.07.2024", wantErr: true},
		{in: "", wantErr: true},
		{in: "2024-13-01", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestValidatorCollectsAllIssues(t *testing.T) {
	var v Validator
	v.Required("name", "")
	v.Date("startDate", "not-a-date")
	v.Check(false, "endDate", "must not precede startDate")

	if v.Valid() {
		t.Fatal("expected validator to hold issues")
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("Reject should report rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Issues []Issue `json:"issues"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Error.Code != "validation" {
		t.Fatalf("expected code validation, got %q", body.Error.Code)
	}
	if len(body.Error.Details.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(body.Error.Details.Issues))
	}
}

func TestValidatorCleanPasses(t *testing.T) {
	var v Validator
	v.Required("name", "Anna")
	if d := v.Date("startDate", "2024-07-11"); !d.Equal(time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date %v", d)
	}

	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("clean validator must not reject")
	}
}
