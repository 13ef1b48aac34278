// Package realtime pushes activity and goal events to an owner's open
// websocket connections.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/gorilla/websocket"
)

const (
	EventActivityLogged = "activity_logged"
	EventGoalsRefreshed = "goals_refreshed"
	EventGoalReached    = "goal_reached"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type        string               `json:"type"`
	OwnerID     string               `json:"owner_id"`
	Kind        string               `json:"kind,omitempty"`
	At          time.Time            `json:"at"`
	RefreshedAt *time.Time           `json:"refreshed_at,omitempty"`
	Result      *model.RefreshResult `json:"result,omitempty"`
	Goal        *model.Goal          `json:"goal,omitempty"`
}

type client struct {
	ownerID string
	conn    *websocket.Conn
	send    chan []byte
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub is a registry of connections keyed by owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		now:     time.Now,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.ownerID] == nil {
		h.clients[c.ownerID] = make(map[*client]struct{})
	}
	h.clients[c.ownerID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set := h.clients[c.ownerID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.ownerID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Connections reports how many sockets ownerID has open.
func (h *Hub) Connections(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}

// Publish queues ev for every connection of its owner. A connection whose
// buffer is full is dropped.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to encode realtime event", "error", err, "type", ev.Type)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[ev.OwnerID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow realtime client", "user_id", c.ownerID)
		h.unregister(c)
	}
}

func (h *Hub) ActivityLogged(ownerID, kind string, at time.Time) {
	h.Publish(Event{Type: EventActivityLogged, OwnerID: ownerID, Kind: kind, At: at.UTC()})
}

func (h *Hub) GoalsRefreshed(ownerID string, result model.RefreshResult) {
	refreshedAt := result.RefreshedAt
	h.Publish(Event{Type: EventGoalsRefreshed, OwnerID: ownerID, At: h.now().UTC(), RefreshedAt: &refreshedAt, Result: &result})
}

func (h *Hub) GoalReached(_ context.Context, goal *model.Goal) {
	snapshot := *goal
	h.Publish(Event{Type: EventGoalReached, OwnerID: goal.OwnerID, At: h.now().UTC(), Goal: &snapshot})
}

// Serve owns conn until it closes. Clients only listen; anything they send
// is discarded.
func (h *Hub) Serve(ctx context.Context, ownerID string, conn *websocket.Conn) {
	c := &client{ownerID: ownerID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	slog.Debug("realtime client connected", "user_id", ownerID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(c)
	}()

	h.readPump(ctx, c)
	h.unregister(c)
	<-done
	slog.Debug("realtime client disconnected", "user_id", ownerID)
}

func (h *Hub) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
