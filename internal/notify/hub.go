// Package notify fans library change events out to connected websocket
// clients. It replaces in-process listener callbacks for anything outside the
// server: a browser with several open views subscribes once and re-reads the
// affected state when an event for its user arrives.
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"bookify/internal/core/model"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub serializes registration and broadcast through one loop, so event order
// seen by every client matches publish order.
type Hub struct {
	log *slog.Logger

	mu         sync.Mutex
	clients    map[*client]struct{}
	broadcast  chan model.LibraryEvent
	register   chan *client
	unregister chan *client
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:        logger,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan model.LibraryEvent, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Publish queues an event for broadcast. It is safe to call from any
// goroutine and never blocks the caller: when the queue is full the event is
// dropped and logged, since clients re-read state on reconnect anyway.
func (h *Hub) Publish(e model.LibraryEvent) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warn("event queue full, dropping", "type", e.Type, "user", e.UserID)
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.drop(c)

		case e := <-h.broadcast:
			data, err := json.Marshal(e)
			if err != nil {
				h.log.Error("marshal event", "err", err)
				continue
			}
			h.mu.Lock()
			stale := make([]*client, 0)
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					stale = append(stale, c)
				}
			}
			h.mu.Unlock()
			for _, c := range stale {
				h.log.Warn("client send buffer full, dropping connection")
				h.drop(c)
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}
