package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	xlogger "ChainPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	hub := NewHub(l)
	e := echo.New()
	e.GET("/ws", hub.Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return m
}

func TestHubSnapshotOnConnect(t *testing.T) {
	hub, srv := newTestHub(t)
	hub.UpdateChart("transactions", models.ChartData{
		Labels:   []string{"2025-05-20"},
		Datasets: []models.Dataset{{Label: "Transactions"}},
	})
	hub.SetBusy("messages", true)

	conn := dial(t, srv)

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		m := readMessage(t, conn)
		seen[m["type"].(string)+":"+m["series"].(string)] = true
	}
	if !seen["chart:transactions"] || !seen["busy:messages"] {
		t.Fatalf("incomplete snapshot: %v", seen)
	}
}

func TestHubBroadcastsUpdates(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.UpdateChart("transactions", models.ChartData{Labels: []string{"2025-05-21"}})

	m := readMessage(t, conn)
	if m["type"] != "chart" || m["series"] != "transactions" {
		t.Fatalf("unexpected message %v", m)
	}
	data := m["data"].(map[string]interface{})
	labels := data["labels"].([]interface{})
	if len(labels) != 1 || labels[0] != "2025-05-21" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestHubCloseDuringRegister(t *testing.T) {
	hub, _ := newTestHub(t)
	hub.UpdateChart("transactions", models.ChartData{Labels: []string{"2025-05-20"}})
	hub.SetBusy("transactions", true)

	// Registrations racing a shutdown must not panic on the snapshot send.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.register(newClient(hub, nil))
		}()
	}
	hub.Close()
	wg.Wait()

	// Clients that registered after the close are drained by a second pass.
	hub.Close()
	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("expected no clients after close, got %d", n)
	}
}

func TestHubClientCountAfterClose(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_ = conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
