// Package web holds the HTTP helpers shared by the storefront and dashboard handlers.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"foodstall/internal/logger"
	"foodstall/internal/models"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes an error response in JSON format
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// WriteError maps err onto a status code and writes it. Server-side failures are logged.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, action string, err error) {
	requestID := RequestID(r.Context())
	status, message := ErrorStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(action, message, requestID, err, map[string]interface{}{
			"path":   r.URL.Path,
			"status": status,
		})
	}
	WriteErrorResponse(w, status, message, requestID)
}

// ErrorStatus returns the HTTP status and client message for err.
func ErrorStatus(err error) (int, string) {
	var (
		validationErr models.ValidationError
		authErr       *models.AuthError
		writeErr      *models.StoreWriteError
		readErr       *models.StoreReadError
	)

	switch {
	case errors.Is(err, models.ErrEmptyCart):
		return http.StatusConflict, "Cart is empty"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.As(err, &writeErr):
		return http.StatusBadGateway, "Could not save changes, please try again"
	case errors.As(err, &readErr):
		return http.StatusBadGateway, "Could not load data, please try again"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// DecodeJSON reads a JSON body into v and rejects unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return models.ValidationError{Field: "body", Message: "invalid JSON format"}
	}
	return nil
}
