// Package response renders the JSON envelopes shared by every API handler.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// SuccessResponse wraps handler data with request metadata.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// Meta carries per-request metadata.
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the envelope for every non-2xx reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes.
const (
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeNotFound         = "NOT_FOUND"
)

// Success sends a 200 response with data.
func Success(w http.ResponseWriter, r *http.Request, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: chimiddleware.GetReqID(r.Context()),
			Timestamp: time.Now(),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// Error sends an error response.
func Error(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: chimiddleware.GetReqID(r.Context()),
			Timestamp: time.Now(),
		},
	}

	log.Error().
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Int("status", statusCode).
		Msg("API error response")

	writeJSON(w, statusCode, resp)
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError sends a 500 Internal Server Error.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	message := "An unexpected error occurred"
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("Internal server error")
		message = err.Error()
	}
	Error(w, r, http.StatusInternalServerError, ErrCodeInternalServer, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
