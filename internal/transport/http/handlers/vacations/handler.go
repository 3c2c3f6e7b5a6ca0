package vacations

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"friscoplan/internal/domain/vacation"
	"friscoplan/internal/transport/http/api"
	"friscoplan/internal/transport/http/middleware"
	"friscoplan/internal/transport/http/shared"
)

const defaultUpcomingLimit = 5

type Handler struct {
	service *vacation.Service
	now     func() time.Time
}

func NewHandler(service *vacation.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/vacations", h.list)
		r.Post("/vacations", h.create)
		r.Get("/vacations/upcoming", h.upcoming)
		r.Get("/vacations/{id}", h.get)
		r.Put("/vacations/{id}", h.update)
		r.Delete("/vacations/{id}", h.remove)
		r.Get("/stats", h.stats)
		r.Get("/settings/limit", h.limit)
		r.Put("/settings/limit", h.setLimit)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var from, to *time.Time
	var v shared.Validator
	if raw := r.URL.Query().Get("from"); raw != "" {
		if d := v.Date("from", raw); !d.IsZero() {
			from = &d
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if d := v.Date("to", raw); !d.IsZero() {
			to = &d
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	all, err := h.service.List(r.Context(), from, to)
	if err != nil {
		slog.Error("listing vacations failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if all == nil {
		all = []vacation.Vacation{}
	}
	api.Success(w, all, requestID)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	api.Success(w, v, requestID)
}

type proposalRequest struct {
	WorkerID  string `json:"workerId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// parseProposal turns the raw body into a Proposal with normalized dates.
// Missing fields stay zero valued so the domain validator reports them
// with its own taxonomy; only malformed dates are rejected here.
func (h *Handler) parseProposal(w http.ResponseWriter, r *http.Request) (vacation.Proposal, bool) {
	requestID := middleware.GetRequestID(r.Context())

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return vacation.Proposal{}, false
	}

	var v shared.Validator
	p := vacation.Proposal{WorkerID: req.WorkerID}
	p.StartDate = v.Date("startDate", req.StartDate)
	p.EndDate = v.Date("endDate", req.EndDate)
	if v.Reject(w, requestID) {
		return vacation.Proposal{}, false
	}
	return p, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.parseProposal(w, r)
	if !ok {
		return
	}

	created, err := h.service.Plan(r.Context(), p)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, ok := h.parseProposal(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Reschedule(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, requestID, err)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	s, err := h.service.Stats(r.Context(), h.now())
	if err != nil {
		slog.Error("computing stats failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, s, requestID)
}

func (h *Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := defaultUpcomingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.Fail(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer", requestID)
			return
		}
		limit = n
	}

	list, err := h.service.Upcoming(r.Context(), h.now(), limit)
	if err != nil {
		slog.Error("listing upcoming vacations failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if list == nil {
		list = []vacation.UpcomingVacation{}
	}
	api.Success(w, list, requestID)
}

func (h *Handler) limit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit, err := h.service.Limit(r.Context())
	if err != nil {
		slog.Error("reading limit failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, map[string]int{"maxConcurrent": limit}, requestID)
}

type limitRequest struct {
	MaxConcurrent int `json:"maxConcurrent"`
}

func (h *Handler) setLimit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req limitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	var v shared.Validator
	v.Check(req.MaxConcurrent >= 1, "maxConcurrent", "must be at least 1")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.service.SetLimit(r.Context(), req.MaxConcurrent); err != nil {
		slog.Error("updating limit failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, map[string]int{"maxConcurrent": req.MaxConcurrent}, requestID)
}

// writeError maps domain failures onto the response taxonomy. Anything
// unrecognized is a 500.
func (h *Handler) writeError(w http.ResponseWriter, requestID string, err error) {
	var rule *vacation.RuleError
	if errors.As(err, &rule) {
		switch rule.Code {
		case vacation.CodeCapacityExceeded:
			api.FailWithDetails(w, http.StatusUnprocessableEntity, rule.Code, rule.Error(),
				map[string]any{
					"date":  rule.Date.Format("2006-01-02"),
					"limit": rule.Limit,
				}, requestID)
		case vacation.CodeMissingField:
			api.FailWithDetails(w, http.StatusBadRequest, rule.Code, rule.Error(),
				map[string]any{"field": rule.Field}, requestID)
		case vacation.CodeInvalidRange:
			api.Fail(w, http.StatusBadRequest, rule.Code, rule.Error(), requestID)
		case vacation.CodeUnknownWorker:
			api.Fail(w, http.StatusNotFound, rule.Code, rule.Error(), requestID)
		default:
			api.Fail(w, http.StatusBadRequest, rule.Code, rule.Error(), requestID)
		}
		return
	}
	switch {
	case errors.Is(err, vacation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "vacation not found", requestID)
	case errors.Is(err, vacation.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "concurrent change, please retry", requestID)
	default:
		slog.Error("vacation operation failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
	}
}
