package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fitfuel/fitfuel/internal/ctxkeys"
	"github.com/fitfuel/fitfuel/internal/realtime"
	"github.com/gorilla/websocket"
)

type EventsHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewEventsHandler accepts browser connections only from appURL's origin.
// Clients that send no Origin header (CLIs, mobile) are allowed.
func NewEventsHandler(hub *realtime.Hub, appURL string) *EventsHandler {
	allowed := ""
	if u, err := url.Parse(appURL); err == nil {
		allowed = u.Host
	}

	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, allowed)
			},
		},
	}
}

func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "user_id", user.ID)
		return
	}

	h.hub.Serve(r.Context(), user.ID, conn)
}
