package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"friscoplan/internal/auth"
	"friscoplan/internal/domain/roster"
	"friscoplan/internal/domain/vacation"
	"friscoplan/internal/transport/http/middleware"
)

type fakeLister struct {
	workers   []roster.Worker
	vacations []vacation.Vacation
}

func (f *fakeLister) ListVacations(_ context.Context, _, _ *time.Time) ([]vacation.Vacation, error) {
	return f.vacations, nil
}

func (f *fakeLister) ListWorkers(_ context.Context) ([]roster.Worker, error) {
	return f.workers, nil
}

const testSecret = "test-secret"

type liveSessions struct{}

func (liveSessions) SessionActive(_ context.Context, _, _ string) (bool, error) { return true, nil }

func newTestRouter(t *testing.T, data *fakeLister) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret, liveSessions{}))
	NewHandler(data, data).RegisterRoutes(r)
	return r
}

func authedRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", Username: "admin", Role: auth.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func sample() *fakeLister {
	return &fakeLister{
		workers: []roster.Worker{{ID: "w1", Name: "Anna Schmidt", Department: "Lager"}},
		vacations: []vacation.Vacation{{
			ID:        "v1",
			WorkerID:  "w1",
			StartDate: time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t, sample())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "/reports/vacations/export?format=csv"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Anna Schmidt") {
		t.Fatal("export should contain the worker name")
	}
}

func TestExportDefaultsToCSV(t *testing.T) {
	router := newTestRouter(t, sample())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "/reports/vacations/export"))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestExportPDF(t *testing.T) {
	router := newTestRouter(t, sample())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "/reports/vacations/export?format=pdf"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("body does not look like a PDF document")
	}
}

func TestExportBadFormat(t *testing.T) {
	router := newTestRouter(t, sample())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "/reports/vacations/export?format=xml"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportRequiresAuth(t *testing.T) {
	router := newTestRouter(t, sample())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/vacations/export", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
