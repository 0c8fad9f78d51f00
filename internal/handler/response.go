// Package handler is the HTTP layer: it decodes requests, calls services
// and encodes responses. All error-to-status mapping lives in writeError
// so every endpoint fails with the same JSON shape.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/waste-portal/internal/apperror"
)

// ErrorResponse is the one error shape the API returns. Field is set
// only for validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing left to do but log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a domain error into an HTTP response. Unknown
// errors become an opaque 500 — raw error strings can leak SQL or paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrDuplicate):
			status = http.StatusConflict
			errorType = "duplicate"
		case errors.Is(err, apperror.ErrInsufficientPoints):
			status = http.StatusConflict
			errorType = "insufficient_points"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads a request body into dest, rejecting unknown fields so
// client typos fail loudly instead of silently dropping data.
func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}
