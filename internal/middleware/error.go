package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"catalog-backend/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// DataResponse wraps a successful single-entity payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusUnprocessableEntity, "validation failed", details)
}

// StatusFor maps an error to the HTTP status of its kind
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError writes err using the status of its kind. Client
// errors carry the innermost message; server errors stay opaque and are
// logged.
func RespondWithDomainError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		RespondWithError(w, status, "internal server error")
		return
	}

	RespondWithError(w, status, clientMessage(err))
}

// clientMessage drops the "failed to ..." prefixes added on the way up
func clientMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && strings.HasPrefix(msg, "failed to ") {
		return msg[i+2:]
	}
	return msg
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithData sends payload wrapped in a data envelope
func RespondWithData(w http.ResponseWriter, statusCode int, payload interface{}) {
	RespondWithJSON(w, statusCode, DataResponse{Data: payload})
}
