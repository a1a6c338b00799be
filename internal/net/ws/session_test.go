package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/websocket"

	"rune-and-ruin/server"
	"rune-and-ruin/server/internal/world"
)

func newSessionServer(t *testing.T) (*server.Hub, *websocket.Conn) {
	t.Helper()

	hub, err := server.NewHub(server.HubConfig{World: world.Config{Width: 12, Height: 8, Seed: "ws"}})
	if err != nil {
		t.Fatalf("NewHub failed: %v", err)
	}

	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})

	return hub, conn
}

func websocketURL(t *testing.T, baseURL string) string {
	t.Helper()

	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.Path = "/"
	return parsed.String()
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	return frame
}

func TestSessionGreetsWithWelcome(t *testing.T) {
	_, conn := newSessionServer(t)

	frame := readFrame(t, conn)
	if frame["type"] != "welcome" {
		t.Fatalf("expected welcome frame first, got %v", frame["type"])
	}
	if ver, _ := frame["ver"].(float64); int(ver) != server.ProtocolVersion {
		t.Fatalf("expected protocol version %d, got %v", server.ProtocolVersion, frame["ver"])
	}
	book, ok := frame["spellbook"].([]any)
	if !ok || len(book) == 0 {
		t.Fatalf("expected welcome to carry the spellbook, got %v", frame["spellbook"])
	}
	board, ok := frame["board"].(map[string]any)
	if !ok {
		t.Fatalf("expected board config in welcome, got %T", frame["board"])
	}
	if width, _ := board["width"].(float64); int(width) != 12 {
		t.Fatalf("expected board width 12, got %v", board["width"])
	}
}

func TestSessionAcksStagedCast(t *testing.T) {
	hub, conn := newSessionServer(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "cast", "spell": "gale-step", "seq": 1}); err != nil {
		t.Fatalf("failed to send cast: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "commandAck" {
		t.Fatalf("expected commandAck, got %v", frame)
	}
	if seq, _ := frame["seq"].(float64); uint64(seq) != 1 {
		t.Fatalf("expected ack for seq 1, got %v", frame["seq"])
	}
	if hub.Pending() != 1 {
		t.Fatalf("expected the cast to be staged, got %d pending", hub.Pending())
	}
}

func TestSessionRejectsUnknownSpell(t *testing.T) {
	hub, conn := newSessionServer(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "cast", "spell": "comet", "seq": 1}); err != nil {
		t.Fatalf("failed to send cast: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "commandReject" {
		t.Fatalf("expected commandReject, got %v", frame)
	}
	if frame["reason"] != "unknown_spell" {
		t.Fatalf("expected unknown_spell reason, got %v", frame["reason"])
	}
	if retry, _ := frame["retry"].(bool); retry {
		t.Fatalf("unknown spell must not be marked retryable")
	}
	if hub.Pending() != 0 {
		t.Fatalf("rejected cast must not be staged, got %d pending", hub.Pending())
	}
}

func TestSessionSuppressesReplayedSequence(t *testing.T) {
	hub, conn := newSessionServer(t)
	readFrame(t, conn)

	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(map[string]any{"type": "join", "seq": 5}); err != nil {
			t.Fatalf("failed to send join: %v", err)
		}
		frame := readFrame(t, conn)
		if frame["type"] != "commandAck" {
			t.Fatalf("expected commandAck on attempt %d, got %v", i, frame)
		}
	}

	if hub.Pending() != 1 {
		t.Fatalf("replayed sequence must stage only once, got %d pending", hub.Pending())
	}
}

func TestSessionEchoesHeartbeat(t *testing.T) {
	_, conn := newSessionServer(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "heartbeat", "sentAt": 12345}); err != nil {
		t.Fatalf("failed to send heartbeat: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "heartbeat" {
		t.Fatalf("expected heartbeat echo, got %v", frame)
	}
	if clientTime, _ := frame["clientTime"].(float64); int64(clientTime) != 12345 {
		t.Fatalf("expected clientTime echo, got %v", frame["clientTime"])
	}
}

func TestSessionSurvivesMalformedPayload(t *testing.T) {
	_, conn := newSessionServer(t)
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not-json")); err != nil {
		t.Fatalf("failed to send malformed payload: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "heartbeat", "sentAt": 1}); err != nil {
		t.Fatalf("failed to send heartbeat: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "heartbeat" {
		t.Fatalf("expected the session to survive malformed input, got %v", frame)
	}
}
