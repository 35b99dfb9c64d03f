package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/middleware"
)

type errorBody struct {
	Error     string         `json:"error"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func (a *App) error(w http.ResponseWriter, status int, message string, details map[string]any) {
	a.json(w, status, errorBody{
		Error:     message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// fail maps service errors onto status codes. Backend details never reach
// the client.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *domain.ValidationError
		climit *domain.CreditLimitError
	)
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for k, v := range verr.Fields {
			details[k] = v
		}
		a.error(w, http.StatusBadRequest, verr.Message, details)
	case errors.As(err, &climit):
		a.error(w, http.StatusBadRequest, climit.Error(), map[string]any{
			"currentUsage": climit.CurrentUsage,
			"limit":        climit.Limit,
		})
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Generation request not found", nil)
	case errors.Is(err, domain.ErrInvalidStateTransition), errors.Is(err, domain.ErrAlreadyExists):
		a.error(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrStorageUnavailable):
		a.logFailure(r, err)
		a.error(w, http.StatusInternalServerError, "Database error occurred", nil)
	default:
		a.logFailure(r, err)
		a.error(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func (a *App) logFailure(r *http.Request, err error) {
	a.Logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("request failed")
}
