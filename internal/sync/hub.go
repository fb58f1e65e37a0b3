// Package sync pushes dataset lifecycle events to websocket and raw TCP
// subscribers.
package sync

import (
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gamerec/internal/dataset"
	"gamerec/internal/metrics"
)

const writeTimeout = 2 * time.Second

type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]struct{}
	wsClients map[*websocket.Conn]struct{}
	logger    zerolog.Logger
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]struct{}),
		logger:    logger.With().Str("component", "sync").Logger(),
	}
}

func encode(ev Event) []byte {
	b, _ := json.Marshal(ev)
	return append(b, '\n')
}

// Add writes the welcome event and registers conn. Holding the lock while
// writing keeps the welcome ahead of any broadcast.
func (h *Hub) Add(conn net.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(encode(welcome("tcp"))); err != nil {
		return err
	}
	h.clients[conn] = struct{}{}
	h.updateGauge()
	return nil
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.updateGauge()
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, encode(welcome("websocket"))); err != nil {
		return err
	}
	h.wsClients[ws] = struct{}{}
	h.updateGauge()
	return nil
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.updateGauge()
	h.mu.Unlock()
	_ = ws.Close()
}

// Broadcast sends ev to every client, dropping those that fail to accept it.
func (h *Hub) Broadcast(ev Event) {
	b := encode(ev)

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.Write(b); err != nil {
			h.logger.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("dropping tcp client")
			_ = c.Close()
			delete(h.clients, c)
		}
	}
	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debug().Err(err).Msg("dropping websocket client")
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
	h.updateGauge()

	h.logger.Info().
		Str("type", ev.Type).
		Int("tcp_clients", len(h.clients)).
		Int("ws_clients", len(h.wsClients)).
		Msg("event broadcast")
}

// DatasetReloaded is a games.WithReloadHook callback.
func (h *Hub) DatasetReloaded(data *dataset.Data) {
	h.Broadcast(DatasetReloaded(data))
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

// updateGauge must be called with h.mu held.
func (h *Hub) updateGauge() {
	metrics.SyncClients.Set(float64(len(h.clients) + len(h.wsClients)))
}
