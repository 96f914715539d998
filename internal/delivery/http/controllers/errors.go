package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"inviteplanner/internal/delivery/http/helpers"
	"inviteplanner/internal/domain"
)

// DeleteResponse is the data payload for DELETE endpoints (200).
type DeleteResponse struct {
	Status string `json:"status"`
}

// DeleteSuccessResponse is the success response envelope for DELETE endpoints (200).
type DeleteSuccessResponse struct {
	Data  DeleteResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// writeServiceError maps a service error onto the response envelope. Errors
// without a mapping are logged and reported as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, transitionErr.Reason)
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrQuotaExceeded):
		helpers.WriteJSONError(w, http.StatusPaymentRequired, helpers.ErrCodeQuotaExceeded, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrPaymentNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "payment not found")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateReference),
		errors.Is(err, domain.ErrPaymentConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}
