package workers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"friscoplan/internal/domain/roster"
	"friscoplan/internal/transport/http/api"
	"friscoplan/internal/transport/http/middleware"
)

type Handler struct {
	store roster.Store
}

func NewHandler(store roster.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/workers", h.list)
		r.Post("/workers", h.create)
		r.Delete("/workers/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	all, err := h.store.ListWorkers(r.Context())
	if err != nil {
		slog.Error("listing workers failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if all == nil {
		all = []roster.Worker{}
	}
	api.Success(w, all, requestID)
}

type createRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		api.Fail(w, http.StatusBadRequest, "missing_field", "name is required", requestID)
		return
	}

	worker, err := h.store.CreateWorker(r.Context(), req.Name, strings.TrimSpace(req.Department))
	if err != nil {
		slog.Error("creating worker failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Created(w, worker, requestID)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteWorker(r.Context(), id); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "worker not found", requestID)
			return
		}
		slog.Error("deleting worker failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}
