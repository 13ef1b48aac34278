package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/fitfuel/fitfuel/internal/service"
)

// writeServiceError maps service and repository errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string, attrs ...any) {
	var verr *service.ValidationError
	var aggErr *service.AggregationError

	switch {
	case errors.As(err, &verr):
		render.FieldError(w, http.StatusBadRequest, verr.Field, verr.Message)
	case errors.Is(err, repository.ErrGoalNotFound):
		render.Error(w, http.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrPhotosDisabled):
		render.FieldError(w, http.StatusBadRequest, "photo", err.Error())
	case errors.As(err, &aggErr):
		slog.WarnContext(r.Context(), msg, append([]any{"error", err}, attrs...)...)
		render.Error(w, http.StatusServiceUnavailable, "activity data is temporarily unavailable, please retry")
	default:
		slog.ErrorContext(r.Context(), msg, append([]any{"error", err}, attrs...)...)
		render.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
