package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"friscoplan/internal/domain/reports"
	"friscoplan/internal/domain/roster"
	"friscoplan/internal/domain/vacation"
	"friscoplan/internal/transport/http/api"
	"friscoplan/internal/transport/http/middleware"
)

type VacationLister interface {
	ListVacations(ctx context.Context, from, to *time.Time) ([]vacation.Vacation, error)
}

type WorkerLister interface {
	ListWorkers(ctx context.Context) ([]roster.Worker, error)
}

type Handler struct {
	vacations VacationLister
	workers   WorkerLister
	now       func() time.Time
}

func NewHandler(vacations VacationLister, workers WorkerLister) *Handler {
	return &Handler{vacations: vacations, workers: workers, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/reports/vacations/export", h.export)
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		api.Fail(w, http.StatusBadRequest, "bad_request", "format must be csv or pdf", requestID)
		return
	}

	vacations, err := h.vacations.ListVacations(r.Context(), nil, nil)
	if err != nil {
		slog.Error("listing vacations for export failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	workers, err := h.workers.ListWorkers(r.Context())
	if err != nil {
		slog.Error("listing workers for export failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}

	rows := reports.BuildRows(workers, vacations)
	stamp := h.now().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="urlaubsplan-`+stamp+`.csv"`)
		if err := reports.WriteCSV(w, rows); err != nil {
			slog.Error("writing CSV export failed", "error", err, "requestId", requestID)
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="urlaubsplan-`+stamp+`.pdf"`)
		if err := reports.WritePDF(w, rows, h.now()); err != nil {
			slog.Error("writing PDF export failed", "error", err, "requestId", requestID)
		}
	}
}
