// Package ws pushes chart updates to connected dashboards. The hub is the
// chart sink of the refresh pipeline: every merge ends with an UpdateChart
// that fans out to all clients, and busy flags let the frontend render
// per-chart loaders.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"ChainPulse/internal/domain/models"
	xlogger "ChainPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type chartMessage struct {
	Type   string           `json:"type"`
	Series string           `json:"series"`
	Data   models.ChartData `json:"data"`
}

type busyMessage struct {
	Type   string `json:"type"`
	Series string `json:"series"`
	Busy   bool   `json:"busy"`
}

// Hub tracks clients and the latest pushed state per series. New clients get
// a full snapshot on connect, so a reload never waits for the next refresh.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	charts  map[string]models.ChartData
	busy    map[string]bool

	upgrader websocket.Upgrader
	logger   *xlogger.Logger
}

func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		charts:  make(map[string]models.ChartData),
		busy:    make(map[string]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades one dashboard connection.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(h, conn)
	h.register(client)
	go client.writePump()
	go client.readPump()
	return nil
}

// SetBusy marks a series as refreshing and pushes the flag to all clients.
func (h *Hub) SetBusy(series string, busy bool) {
	h.mu.Lock()
	h.busy[series] = busy
	h.mu.Unlock()

	h.broadcast(busyMessage{Type: "busy", Series: series, Busy: busy})
}

// UpdateChart replaces the latest payload for a series and pushes it.
func (h *Hub) UpdateChart(series string, cd models.ChartData) {
	h.mu.Lock()
	h.charts[series] = cd
	h.mu.Unlock()

	h.broadcast(chartMessage{Type: "chart", Series: series, Data: cd})
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}

	// Snapshot and send under the lock: the client never misses an update
	// between snapshot and registration, and Close (which also holds the
	// lock) cannot close the send channel mid-snapshot.
	for series, cd := range h.charts {
		if data, err := json.Marshal(chartMessage{Type: "chart", Series: series, Data: cd}); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}
	for series, busy := range h.busy {
		if !busy {
			continue
		}
		if data, err := json.Marshal(busyMessage{Type: "busy", Series: series, Busy: true}); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}
	h.mu.Unlock()

	h.logger.Debug("dashboard connected", xlogger.Int("clients", h.ClientCount()))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal ws message", xlogger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer: drop the frame, the next update supersedes it.
		}
	}
}
