package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(r.Context(), r.URL.Query().Get("owner"), conn)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url, owner string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?owner="+owner, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(owner) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ev
}

func TestHubDeliversOnlyToOwner(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, hub, url, "alice")
	bob := dial(t, hub, url, "bob")

	at := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)
	hub.ActivityLogged("alice", "meal", at)
	hub.ActivityLogged("bob", "workout", at)

	ev := readEvent(t, alice)
	if ev.Type != EventActivityLogged || ev.Kind != "meal" || !ev.At.Equal(at) {
		t.Fatalf("alice got %+v", ev)
	}
	ev = readEvent(t, bob)
	if ev.OwnerID != "bob" || ev.Kind != "workout" {
		t.Fatalf("bob got %+v", ev)
	}
}

func TestHubGoalEvents(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, "alice")

	refreshedAt := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	hub.GoalsRefreshed("alice", model.RefreshResult{OwnerID: "alice", Reset: 2, RefreshedAt: refreshedAt})
	hub.GoalReached(context.Background(), &model.Goal{ID: "g1", OwnerID: "alice", GoalType: model.GoalDailyProtein, TargetValue: 100, CurrentValue: 104})

	ev := readEvent(t, conn)
	if ev.Type != EventGoalsRefreshed || ev.RefreshedAt == nil || !ev.RefreshedAt.Equal(refreshedAt) || ev.Result.Reset != 2 {
		t.Fatalf("unexpected refresh event %+v", ev)
	}
	ev = readEvent(t, conn)
	if ev.Type != EventGoalReached || ev.Goal == nil || ev.Goal.ID != "g1" {
		t.Fatalf("unexpected reached event %+v", ev)
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, "alice")
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections("alice") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// publishing to an owner without connections is a no-op
	hub.ActivityLogged("alice", "meal", time.Now())
}
