package calendar

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	cal "friscoplan/internal/domain/calendar"
	"friscoplan/internal/domain/vacation"
	"friscoplan/internal/transport/http/api"
	"friscoplan/internal/transport/http/middleware"
)

// Years outside this window are almost certainly client bugs.
const (
	minYear = 1900
	maxYear = 2200
)

type Handler struct {
	defaultRegion string
	service       *vacation.Service
}

func NewHandler(defaultRegion string, service *vacation.Service) *Handler {
	return &Handler{defaultRegion: defaultRegion, service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/calendar/holidays", h.holidays)
		r.Get("/calendar/regions", h.regions)
		r.Get("/calendar/school-holidays", h.schoolHolidays)
		r.Get("/calendar/occupancy", h.occupancy)
	})
}

func (h *Handler) holidays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minYear || n > maxYear {
			api.Fail(w, http.StatusBadRequest, "bad_request", "year must be a four digit year", requestID)
			return
		}
		year = n
	}

	region := h.defaultRegion
	if raw := r.URL.Query().Get("region"); raw != "" {
		region = raw
	}
	c, err := cal.New(region)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "unknown holiday region", requestID)
		return
	}

	api.Success(w, map[string]any{
		"year":     year,
		"region":   c.Region(),
		"holidays": c.HolidaysForYear(year),
	}, requestID)
}

func (h *Handler) regions(w http.ResponseWriter, r *http.Request) {
	api.Success(w, cal.Regions(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) schoolHolidays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ranges, err := h.service.SchoolHolidays(r.Context())
	if err != nil {
		slog.Error("listing school holidays failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if ranges == nil {
		ranges = []cal.SchoolHoliday{}
	}
	api.Success(w, ranges, requestID)
}

func (h *Handler) occupancy(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	raw := r.URL.Query().Get("month")
	if raw == "" {
		raw = time.Now().Format("2006-01")
	}
	month, err := time.Parse("2006-01", raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "month must be in YYYY-MM form", requestID)
		return
	}

	days, err := h.service.Occupancy(r.Context(), month.Year(), month.Month())
	if err != nil {
		slog.Error("computing occupancy failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, map[string]any{
		"month": raw,
		"days":  days,
	}, requestID)
}
