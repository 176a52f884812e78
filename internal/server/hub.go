package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/rangestore"
)

// EventType names a range change pushed to websocket clients.
type EventType string

const (
	EventRangeSaved   EventType = "range.saved"
	EventRangeDeleted EventType = "range.deleted"
)

// Event is the message written to websocket clients.
type Event struct {
	Type      EventType             `json:"type"`
	Key       string                `json:"key"`
	Config    cash.Config           `json:"config"`
	Range     *rangestore.CashRange `json:"range,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// Hub fans range changes out to every connected websocket client. It
// implements rangestore.Listener.
type Hub struct {
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	clock       quartz.Clock
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

var _ rangestore.Listener = (*Hub)(nil)

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *log.Logger, clock quartz.Clock) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		clock:       clock,
		logger:      logger.WithPrefix("hub"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run handles connection lifecycle until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			total := len(h.connections)
			h.mu.Unlock()
			h.logger.Info("Client connected", "total", total)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				_ = conn.Close()
			}
			total := len(h.connections)
			h.mu.Unlock()
			h.logger.Info("Client disconnected", "total", total)

		case <-h.ctx.Done():
			return
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	for conn := range h.connections {
		_ = conn.Close()
	}
	clear(h.connections)
	h.mu.Unlock()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// attach registers conn and unregisters it once it closes.
func (h *Hub) attach(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
		_ = conn.Close()
		return
	}
	conn.Start()

	go func() {
		<-conn.ctx.Done()
		select {
		case h.unregister <- conn:
		case <-h.ctx.Done():
		}
	}()
}

// Broadcast sends ev to every client. Slow clients are dropped rather
// than blocking the caller.
func (h *Hub) Broadcast(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for conn := range h.connections {
		if err := conn.Send(ev); err != nil {
			h.logger.Debug("Failed to send event", "error", err)
			continue
		}
		count++
	}
	h.logger.Debug("Broadcast event", "type", ev.Type, "key", ev.Key, "recipients", count)
}

func (h *Hub) OnRangeSaved(r rangestore.CashRange) {
	h.Broadcast(&Event{
		Type:      EventRangeSaved,
		Key:       r.Key(),
		Config:    r.Config(),
		Range:     &r,
		Timestamp: h.clock.Now().UTC(),
	})
}

func (h *Hub) OnRangeDeleted(key string, cfg cash.Config) {
	h.Broadcast(&Event{
		Type:      EventRangeDeleted,
		Key:       key,
		Config:    cfg,
		Timestamp: h.clock.Now().UTC(),
	})
}
