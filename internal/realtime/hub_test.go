package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voicedesk/internal/auth"
	"voicedesk/internal/calllog"
	"voicedesk/internal/config"
)

func testManager(t *testing.T) *auth.Manager {
	t.Helper()
	mgr, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret-test-secret-test-secret",
		JWTIssuer:       "voicedesk-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	mgr := testManager(t)

	router := gin.New()
	router.GET("/v1/ws", NewHandler(hub, mgr).Serve)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv, mgr
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSessions(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SessionCount(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("sessions for %s = %d, want %d", userID, hub.SessionCount(userID), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifyCallUpdateReachesOwnerSessions(t *testing.T) {
	hub, srv, mgr := newTestServer(t)

	pair, err := mgr.IssuePair(time.Now().UTC(), "user-1", "org-1", "owner")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	first := dial(t, srv, pair.AccessToken)
	second := dial(t, srv, pair.AccessToken)
	waitForSessions(t, hub, "user-1", 2)

	hub.NotifyCallUpdate("user-1", calllog.CallUpdate{
		CallID:  "c1",
		Status:  "completed",
		Minutes: 5,
		Cost:    0.42,
	})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var frame struct {
			Type string             `json:"type"`
			Data calllog.CallUpdate `json:"data"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if frame.Type != "callUpdate" {
			t.Fatalf("type = %q", frame.Type)
		}
		if frame.Data.CallID != "c1" || frame.Data.Cost != 0.42 {
			t.Fatalf("data = %+v", frame.Data)
		}
	}
}

func TestNotifyOtherUserIsSilent(t *testing.T) {
	hub, srv, mgr := newTestServer(t)

	pair, err := mgr.IssuePair(time.Now().UTC(), "user-1", "org-1", "owner")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	conn := dial(t, srv, pair.AccessToken)
	waitForSessions(t, hub, "user-1", 1)

	hub.NotifyCallUpdate("user-2", calllog.CallUpdate{CallID: "c2", Status: "completed"})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("received a frame for another user")
	}
}

func TestServeRejectsBadToken(t *testing.T) {
	_, srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial succeeded with bad token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("status = %v", resp)
	}
}

func TestDisconnectPrunesSession(t *testing.T) {
	hub, srv, mgr := newTestServer(t)

	pair, err := mgr.IssuePair(time.Now().UTC(), "user-1", "org-1", "owner")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	conn := dial(t, srv, pair.AccessToken)
	waitForSessions(t, hub, "user-1", 1)

	conn.Close()
	waitForSessions(t, hub, "user-1", 0)
}
