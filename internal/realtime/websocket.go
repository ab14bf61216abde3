// internal/realtime/websocket.go
package realtime

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// WebSocketConn wraps websocket.Conn so the hub does not depend on it.
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

// ServeEvents streams the events of the address stored in the "address"
// local by the upgrade middleware.
func ServeEvents(hub *Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		addr, ok := c.Locals("address").(models.Address)
		if !ok || addr.IsZero() {
			log.Println("WebSocket: missing address")
			c.Close()
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			Address: addr,
			Conn:    NewWebSocketConn(c),
			Send:    make(chan []byte, 256),
		}

		if !hub.RegisterClient(client) {
			log.Printf("WebSocket: hub stopped, rejecting %s\n", addr)
			c.Close()
			return
		}
		defer func() {
			hub.UnregisterClient(client)
			log.Printf("WebSocket: %s disconnected\n", addr)
		}()
		log.Printf("WebSocket: %s connected\n", addr)

		// The hub closes Send on unregister and on shutdown; either way the
		// connection is done.
		go func() {
			defer c.Close()
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("WebSocket write error:", err)
					return
				}
			}
		}()

		// Clients only send pongs; reading detects the close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}
}
