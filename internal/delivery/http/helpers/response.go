package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeQuotaExceeded = "quota_exceeded"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope of every API response. Exactly one of Data and
// Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess writes data in the envelope with the given status.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes an error envelope with the given status, code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// Responses carry per-user data, so they are never cached.
func writeEnvelope(w http.ResponseWriter, statusCode int, resp APIResponse) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
