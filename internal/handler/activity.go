package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fitfuel/fitfuel/internal/ctxkeys"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/fitfuel/fitfuel/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	maxUploadMemory int64
}

func NewActivityHandler(activityService *service.ActivityService, maxUploadMemory int64) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		maxUploadMemory: maxUploadMemory,
	}
}

// LogMeal accepts either a JSON body or a multipart form with a "meal"
// JSON field and an optional "photo" file.
func (h *ActivityHandler) LogMeal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.MealInput
	var photo *service.Photo

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMemory+(1<<20))
		if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
			render.Error(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("meal")), &in); err != nil {
			render.FieldError(w, http.StatusBadRequest, "meal", "meal must be a JSON object")
			return
		}

		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			defer file.Close()
			photo = &service.Photo{Body: file, Size: header.Size}
		case !errors.Is(err, http.ErrMissingFile):
			render.FieldError(w, http.StatusBadRequest, "photo", "invalid photo upload")
			return
		}
	} else if err := render.Decode(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.activityService.LogMeal(r.Context(), user.ID, in, photo)
	if err != nil {
		writeServiceError(w, r, err, "failed to log meal", "user_id", user.ID)
		return
	}

	render.JSON(w, http.StatusCreated, entry)
}

func (h *ActivityHandler) LogWorkout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.WorkoutInput
	if err := render.Decode(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.activityService.LogWorkout(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to log workout", "user_id", user.ID)
		return
	}

	render.JSON(w, http.StatusCreated, entry)
}

func (h *ActivityHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	weeksBack := 0
	if v := r.URL.Query().Get("weeks_back"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			render.FieldError(w, http.StatusBadRequest, "weeks_back", "must be an integer")
			return
		}
		weeksBack = n
	}

	summary, err := h.activityService.WeeklySummary(r.Context(), user.ID, weeksBack)
	if err != nil {
		writeServiceError(w, r, err, "failed to build weekly summary", "user_id", user.ID, "weeks_back", weeksBack)
		return
	}

	slog.Debug("weekly summary served", "user_id", user.ID, "weeks_back", weeksBack)
	render.JSON(w, http.StatusOK, summary)
}
