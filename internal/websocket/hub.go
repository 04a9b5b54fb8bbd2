package websocket

import (
	"context"
	"sync"
)

// Hub tracks live WebSocket connections, indexed by user.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// users maps user ID to that user's connections
	users map[string]map[*Client]struct{}

	// ops carries registrations and removals on one channel so they are
	// applied in the order they were requested.
	ops chan hubOp
}

type hubOp struct {
	client   *Client
	register bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		users:   make(map[string]map[*Client]struct{}),
		ops:     make(chan hubOp, 512),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case op := <-h.ops:
			if op.register {
				h.addClient(op.client)
			} else {
				h.removeClient(op.client)
			}
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.ops <- hubOp{client: client, register: true}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.ops <- hubOp{client: client}
}

// BroadcastToUser sends a message to all connections for a specific user
func (h *Hub) BroadcastToUser(userID string, payload []byte) {
	h.mu.RLock()
	for client := range h.users[userID] {
		client.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// BroadcastAll sends a message to every connection
func (h *Hub) BroadcastAll(payload []byte) {
	h.mu.RLock()
	for _, client := range h.clients {
		client.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetUserConnectionCount returns the number of live connections of a user
func (h *Hub) GetUserConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.users[client.UserID]; !ok {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
}

// removeClient drops client and closes its send channel. Safe to call twice.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)

	if conns, ok := h.users[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}

	close(client.Send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
	h.users = make(map[string]map[*Client]struct{})
}
