package websocket

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Hub fans search feed events out to every subscribed client. The client
// set is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	events     chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connected atomic.Int64
	evicted   atomic.Int64
	log       *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		events:     make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Search feed started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.log.WithField("evicted", h.evicted.Load()).Info("Search feed stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))
			h.log.WithField("clients", len(h.clients)).Debug("Feed subscriber joined")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.WithField("clients", len(h.clients)).Debug("Feed subscriber left")
			}

		case msg := <-h.events:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow subscriber
					h.drop(c)
					h.evicted.Add(1)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	close(c.send)
	delete(h.clients, c)
	h.connected.Store(int64(len(h.clients)))
}

// join hands c to Run. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues an event for delivery. It never blocks the caller.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event.JSON():
	default:
		h.log.WithField("type", event.Type).Warn("Search feed backlog full, dropping event")
	}
}

// ClientCount returns the number of subscribed clients.
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}
