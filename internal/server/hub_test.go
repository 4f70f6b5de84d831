package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheroos/aethero/internal/asl"
)

func dialTestWS(t *testing.T, srv *Server, sessionID string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/aethero/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading websocket: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(msg, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestWebSocketProcess(t *testing.T) {
	srv := newTestServer(true)
	conn := dialTestWS(t, srv, "ws-session")

	if err := conn.WriteJSON(map[string]string{"type": "asl_process", "input": "[INTENT:x]"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp := readWS(t, conn)
	if resp["type"] != "asl_result" {
		t.Fatalf("response type = %v: %v", resp["type"], resp)
	}
	if resp["session_id"] != "ws-session" {
		t.Errorf("session_id = %v", resp["session_id"])
	}
}

func TestWebSocketSubscribe(t *testing.T) {
	srv := newTestServer(true)
	conn := dialTestWS(t, srv, "ws-session")

	if err := conn.WriteJSON(map[string]string{"type": "subscribe_minister", "minister": "primus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp := readWS(t, conn)
	if resp["type"] != "subscription_confirmed" || resp["minister"] != "primus" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestHubSessionActivity(t *testing.T) {
	srv := newTestServer(true)
	conn := dialTestWS(t, srv, "tracked")

	if err := conn.WriteJSON(map[string]string{"type": "asl_process", "input": "[INTENT:x]"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readWS(t, conn)

	sessions := srv.Hub().Sessions()
	seen, ok := sessions["tracked"]
	if !ok {
		t.Fatalf("session not tracked: %v", sessions)
	}
	if time.Since(seen) > time.Minute {
		t.Errorf("stale last-activity time: %v", seen)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	srv := newTestServer(true)
	conn := dialTestWS(t, srv, "ws-session")

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp := readWS(t, conn)
	if resp["type"] != "error" {
		t.Fatalf("expected error response, got %v", resp)
	}
}

func TestWebSocketMissingSession(t *testing.T) {
	srv := newTestServer(true)

	req := httptest.NewRequest("GET", "/aethero/ws/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code == http.StatusSwitchingProtocols {
		t.Fatal("upgrade should not succeed without a session id")
	}
}

func TestHubMinisterBroadcast(t *testing.T) {
	srv := newTestServer(true)
	subscribed := dialTestWS(t, srv, "sub")
	other := dialTestWS(t, srv, "other")

	if err := subscribed.WriteJSON(map[string]string{"type": "subscribe_minister", "minister": "archivus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readWS(t, subscribed) // subscription_confirmed

	srv.Hub().BroadcastMinister(asl.MinisterArchivus, "minister_event", map[string]string{"note": "hi"})

	resp := readWS(t, subscribed)
	if resp["type"] != "minister_event" {
		t.Fatalf("unexpected event: %v", resp)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("unsubscribed session should not receive minister events")
	}
}
