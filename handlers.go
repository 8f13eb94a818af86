package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

// Handler encapsulates the HTTP handling logic. All state it needs — the
// store, the publisher and the token secret — is injected here; nothing is
// module-level.
type Handler struct {
	store     Store
	publisher NotificationPublisher
	jwtSecret []byte
}

func NewHandler(store Store, publisher NotificationPublisher, jwtSecret []byte) *Handler {
	return &Handler{store: store, publisher: publisher, jwtSecret: jwtSecret}
}

func RegisterRouters(mux *chi.Mux, h *Handler) {
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logger)

	mux.Route("/api", func(api chi.Router) {
		api.Post("/register", h.Register)
		api.Post("/login", h.Login)

		api.Group(func(private chi.Router) {
			private.Use(h.Authenticate)

			private.Get("/expenses", h.ListExpenses)
			private.Post("/expenses", h.CreateExpense)
			private.Put("/expenses/{id}", h.UpdateExpense)
			private.Delete("/expenses/{id}", h.DeleteExpense)

			private.Get("/loans", h.ListLoans)
			private.Post("/loans", h.CreateLoan)
			private.Put("/loans/{id}", h.UpdateLoan)
			private.Delete("/loans/{id}", h.DeleteLoan)

			private.Get("/users/limit", h.GetWeeklyLimit)
			private.Put("/users/limit", h.SetWeeklyLimit)
		})
	})

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError is the single point where handler errors become HTTP responses.
// Every body has the shape {"error": "..."}; unexpected errors are logged
// and reported as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verrs.Error()})
	case errors.Is(err, ErrDuplicateUser):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrDuplicateUser.Error()})
	case errors.Is(err, ErrUserNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrUserNotFound.Error()})
	case errors.Is(err, ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidPassword.Error()})
	case errors.Is(err, ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrMissingToken.Error()})
	case errors.Is(err, ErrInvalidToken):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": ErrInvalidToken.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrNotFound.Error()})
	default:
		slog.ErrorContext(r.Context(), "unexpected handler error",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
	}
}

// callerId pulls the authenticated user id out of the request context. The
// Authenticate middleware guarantees it is present on protected routes.
func callerId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := UserIdFromContext(r.Context())
	if !ok {
		writeError(w, r, ErrMissingToken)
	}
	return id, ok
}

func (h *Handler) GetWeeklyLimit(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	limit, err := h.store.GetWeeklyLimit(r.Context(), userId)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"weekly_limit": limit})
}

func (h *Handler) SetWeeklyLimit(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	var in WeeklyLimitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.store.SetWeeklyLimit(r.Context(), userId, in.WeeklyLimit); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Weekly limit updated"})
}
