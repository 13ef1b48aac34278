package handler

import (
	"net/http"

	"github.com/fitfuel/fitfuel/internal/ctxkeys"
	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/fitfuel/fitfuel/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type createGoalRequest struct {
	GoalType    model.GoalType `json:"goal_type"`
	TargetValue float64        `json:"target_value"`
	Unit        string         `json:"unit"`
}

// List refreshes, then returns goals with percentages. A failed refresh
// still answers 200 with the last known values and refresh_error set.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	list, err := h.goalService.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list goals", "user_id", user.ID)
		return
	}

	render.JSON(w, http.StatusOK, list)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGoalRequest
	if err := render.Decode(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Create(r.Context(), user.ID, req.GoalType, req.TargetValue, req.Unit)
	if err != nil {
		writeServiceError(w, r, err, "failed to create goal", "user_id", user.ID, "goal_type", req.GoalType)
		return
	}

	render.JSON(w, http.StatusCreated, model.NewGoalProgress(goal))
}

// CreateFromSuggestion accepts the recommendation payload as-is.
func (h *GoalHandler) CreateFromSuggestion(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var suggestion model.Suggestion
	if err := render.Decode(w, r, &suggestion); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.CreateFromSuggestion(r.Context(), user.ID, suggestion)
	if err != nil {
		writeServiceError(w, r, err, "failed to create goal from suggestion", "user_id", user.ID, "goal_type", suggestion.Type)
		return
	}

	render.JSON(w, http.StatusCreated, model.NewGoalProgress(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), user.ID, goalID)
	if err != nil {
		writeServiceError(w, r, err, "failed to delete goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.runRefresh(w, r, false)
}

func (h *GoalHandler) ForceReset(w http.ResponseWriter, r *http.Request) {
	h.runRefresh(w, r, true)
}

func (h *GoalHandler) runRefresh(w http.ResponseWriter, r *http.Request, force bool) {
	user := ctxkeys.User(r.Context())

	refresh := h.goalService.RefreshAll
	if force {
		refresh = h.goalService.ForceResetAll
	}

	result, err := refresh(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "failed to refresh goals", "user_id", user.ID, "force", force)
		return
	}

	render.JSON(w, http.StatusOK, result)
}

type goalTypeInfo struct {
	GoalType model.GoalType `json:"goal_type"`
	Label    string         `json:"label"`
	Unit     string         `json:"unit"`
	Window   model.Window   `json:"window"`
}

// Defaults lists the starter goals and every supported goal type.
func (h *GoalHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	types := make([]goalTypeInfo, 0, len(model.GoalTypes))
	for _, t := range model.SortedGoalTypes() {
		spec, _ := t.Spec()
		types = append(types, goalTypeInfo{GoalType: t, Label: t.Label(), Unit: spec.Unit, Window: spec.Window})
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"goals": model.DefaultGoals(),
		"types": types,
	})
}
