// internal/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type Client struct {
	ID      string
	Address models.Address
	Conn    *WebSocketConn
	Send    chan []byte
}

// Hub routes escrow events to the websocket clients of the addresses they
// concern. It is also an escrow.Publisher for single-process setups.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// RegisterClient reports false, and closes client.Send, once Run has
// returned.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		close(client.Send)
		return false
	}
}

// UnregisterClient is a no-op once Run has returned; Run already closed
// every Send on its way out.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Message is what a websocket client receives for one event.
func Message(ev escrow.Event) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":  "escrow_event",
		"event": ev,
	})
}

func (h *Hub) Publish(_ context.Context, ev escrow.Event) error {
	payload, err := Message(ev)
	if err != nil {
		return err
	}
	h.Deliver(payload, ev.Recipients)
	return nil
}

// Deliver sends payload once to every connection of every recipient.
// Slow clients miss messages instead of blocking the hub.
func (h *Hub) Deliver(payload []byte, recipients []models.Address) {
	want := make(map[models.Address]bool, len(recipients))
	for _, r := range recipients {
		want[r] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !want[client.Address] {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("Dropping event for slow client %s (%s)", client.ID, client.Address)
		}
	}
}

// Connected returns how many clients are registered for addr.
func (h *Hub) Connected(addr models.Address) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.Address == addr {
			n++
		}
	}
	return n
}

// Run serves registrations until ctx is done, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Client registered: %s (address: %s)", client.ID, client.Address)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}
