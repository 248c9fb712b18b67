package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/se1907800-collab/mediavalut/internal/selection"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	SnapshotReplaced NotificationType = "snapshot_replaced"
	TreeChanged      NotificationType = "tree_changed"
	ImportComplete   NotificationType = "import_complete"
	SelectionState   NotificationType = "selection_state"
	OperationError   NotificationType = "operation_error"
	SyncError        NotificationType = "sync_error"
)

// Notification is a message pushed to connected clients.
type Notification struct {
	Type    NotificationType       `json:"type"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Client is one WebSocket connection together with its own gesture state.
// Selection is per client: two open tabs select independently.
type Client struct {
	Conn       *websocket.Conn
	Controller *selection.Controller

	writeMu sync.Mutex
}

// write serializes frames onto the connection. The connection allows only
// one concurrent writer, and broadcasts, per-client sends and the gesture
// loop all reach it from different goroutines.
func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Manager handles WebSocket connections and notifications.
type Manager struct {
	clients    map[*Client]struct{}
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
}

// NewManager returns a running connection manager.
func NewManager() *Manager {
	m := &Manager{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
	go m.run()
	return m
}

func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = struct{}{}
			m.mu.Unlock()
		case client := <-m.unregister:
			m.mu.Lock()
			delete(m.clients, client)
			m.mu.Unlock()
		}
	}
}

// RegisterClient registers a new WebSocket client.
func (m *Manager) RegisterClient(client *Client) {
	m.register <- client
}

// UnregisterClient unregisters a WebSocket client.
func (m *Manager) UnregisterClient(client *Client) {
	m.unregister <- client
}

// Broadcast sends a notification to every connected client.
func (m *Manager) Broadcast(notification *Notification) {
	data, err := json.Marshal(notification)
	if err != nil {
		log.Printf("websocket: marshal notification: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.clients {
		if err := client.write(data); err != nil {
			// Keep sending to the remaining clients; the dead
			// connection unregisters itself from its read loop.
			continue
		}
	}
}

// Send delivers a notification to one client only.
func (m *Manager) Send(client *Client, notification *Notification) {
	data, err := json.Marshal(notification)
	if err != nil {
		log.Printf("websocket: marshal notification: %v", err)
		return
	}
	if err := client.write(data); err != nil {
		log.Printf("websocket: send: %v", err)
	}
}

// BroadcastTreeChanged tells clients to re-render after a mutation.
func (m *Manager) BroadcastTreeChanged(lastUpdated int64) {
	m.Broadcast(&Notification{
		Type: TreeChanged,
		Data: map[string]interface{}{"last_updated": lastUpdated},
	})
}

// BroadcastSnapshotReplaced announces a whole-snapshot replacement driven
// by a remote write.
func (m *Manager) BroadcastSnapshotReplaced(lastUpdated int64) {
	m.Broadcast(&Notification{
		Type: SnapshotReplaced,
		Data: map[string]interface{}{"last_updated": lastUpdated},
	})
}
