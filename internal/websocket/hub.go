package websocket

import (
	"encoding/json"
	"log"
)

// Notification is the payload pushed to a connected client when something
// happens for them, currently only mutual matches.
type Notification struct {
	Kind      string `json:"kind"`
	Username  string `json:"username"` // recipient
	Actor     string `json:"actor"`    // the other user in the match
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Hub maintains the set of active clients and delivers notifications to
// them. One connection per username; a new connection replaces the old one.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	// Notifications aimed at a specific user.
	direct chan *Notification
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		direct:     make(chan *Notification, 256),
	}
}

// Deliver hands a notification to the hub for delivery. The send is
// non-blocking so a slow hub never stalls the caller (the Kafka consumer).
func (h *Hub) Deliver(n *Notification) {
	select {
	case h.direct <- n:
	default:
		log.Printf("Warning: hub direct channel full, dropping notification for %s", n.Username)
	}
}

// Run starts the hub loop. It must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.Username]; ok {
				// Replace the previous connection for this user.
				close(existing.send)
			}
			h.clients[client.Username] = client

		case client := <-h.unregister:
			if stored, ok := h.clients[client.Username]; ok && stored == client {
				delete(h.clients, client.Username)
				close(client.send)
			}

		case n := <-h.direct:
			client, ok := h.clients[n.Username]
			if !ok {
				continue // recipient not connected, the stored row covers them
			}
			payload, err := json.Marshal(n)
			if err != nil {
				log.Printf("Error: failed to marshal notification for %s: %v", n.Username, err)
				continue
			}
			select {
			case client.send <- payload:
			default:
				// Send buffer full, assume the client is gone.
				close(client.send)
				delete(h.clients, n.Username)
			}
		}
	}
}
