package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"friscoplan/internal/auth"
	"friscoplan/internal/transport/http/api"
	"friscoplan/internal/transport/http/middleware"
	"friscoplan/internal/transport/http/shared"
)

// UserStore is the slice of the credential store the handler needs.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (auth.User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
}

type Handler struct {
	store    UserStore
	secret   string
	tokenTTL time.Duration
}

func NewHandler(store UserStore, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{store: store, secret: secret, tokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/auth/logout", h.logout)
		r.Get("/me", h.me)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	var v shared.Validator
	v.Required("username", req.Username)
	v.Required("password", req.Password)
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.store.FindUserByUsername(r.Context(), auth.NormalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			// Same response as a wrong password so usernames cannot be probed.
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", requestID)
			return
		}
		slog.Error("login lookup failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", requestID)
		return
	}

	token, err := auth.GenerateToken(h.secret, auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, h.tokenTTL)
	if err != nil {
		slog.Error("token generation failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}

	expires := time.Now().Add(h.tokenTTL)
	if err := h.store.CreateSession(r.Context(), user.ID, auth.HashToken(token), expires); err != nil {
		slog.Error("session persistence failed", "error", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if err := h.store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("updating last login failed", "error", err, "requestId", requestID)
	}

	api.Success(w, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  user.Username,
		Role:      user.Role,
	}, requestID)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	token := bearerToken(r)
	if token != "" {
		if err := h.store.RevokeSession(r.Context(), user.UserID, auth.HashToken(token)); err != nil {
			slog.Warn("session revocation failed", "error", err, "requestId", requestID)
		}
	}

	api.Success(w, map[string]any{"loggedOut": true}, requestID)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, map[string]any{
		"userId":   user.UserID,
		"username": user.Username,
		"role":     user.Role,
	}, middleware.GetRequestID(r.Context()))
}

func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
