package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/deliverzler/functions/pkg/errors"
	"github.com/deliverzler/functions/pkg/logger"
	"github.com/deliverzler/functions/pkg/validator"
)

// Response is the JSON envelope of every callable response.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the client-visible part of a failed call.
type ErrorResponse struct {
	Code      apperrors.Kind    `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful response wrapping v in the envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError renders err as one of the callable error kinds. Internal errors
// are logged with their cause, which is never sent to the client. The
// request-scoped logger is preferred over the fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		_, msg := valErr.First()
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:      apperrors.KindInvalidArgument,
				Message:   msg,
				Fields:    valErr.Fields(),
				RequestID: requestID,
			},
		})
		return
	}

	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"
	var fields map[string]string

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Field != "" {
			fields = map[string]string{appErr.Field: appErr.Message}
		}
	} else if kind != apperrors.KindInternal {
		message = err.Error()
	}

	if kind == apperrors.KindInternal {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: kind, Message: message, Fields: fields, RequestID: requestID},
	})
}

// WriteBadRequest reports an undecodable request body as INVALID_ARGUMENT.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{
			Code:      apperrors.KindInvalidArgument,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}
