package handler

import (
	"net/http"

	"github.com/fitfuel/fitfuel/internal/db"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), h.db); err != nil {
		render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		return
	}
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
