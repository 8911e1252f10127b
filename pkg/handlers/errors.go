package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
)

// serviceFailure describes how an unexpected service error is reported.
type serviceFailure struct {
	code        string
	message     string
	notFound    string // message for apperrors.ErrNotFound
	withDetails bool   // include the error text as details
}

// writeServiceError maps a service error to an HTTP error response.
// Client errors are written as is; anything else is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, f serviceFailure, fields ...zap.Field) {
	var writeErr error

	var inputErr *apperrors.InputError
	switch {
	case errors.As(err, &inputErr):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "invalid_input", inputErr.Message)
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "invalid_input", "Invalid input")
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", f.notFound)
	default:
		logger.Error(f.message, append(fields, zap.Error(err))...)
		if f.withDetails {
			writeErr = ErrorResponseWithDetails(w, http.StatusInternalServerError, f.code, f.message, err.Error())
		} else {
			writeErr = ErrorResponse(w, http.StatusInternalServerError, f.code, f.message)
		}
	}

	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
