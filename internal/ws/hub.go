package ws

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Server to client event names.
const (
	EventTodoCreated       = "todo:created"
	EventTodoUpdated       = "todo:updated"
	EventTodoDeleted       = "todo:deleted"
	EventTodoAssigned      = "todo:assigned"
	EventTodoStatusChanged = "todo:status_changed"
	EventTeamUpdated       = "team:updated"
	EventMemberAdded       = "team:member_added"
	EventMemberRemoved     = "team:member_removed"
	EventNotification      = "notification:received"
)

// Frame is the JSON shape of every server to client message.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Envelope is the payload carried by "notification:received" events.
type Envelope struct {
	Type      string      `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func NewEnvelope(notificationType, title, message string, data interface{}) Envelope {
	return Envelope{
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// EventWriter delivers a single named event to one live connection.
type EventWriter interface {
	WriteEvent(event string, data interface{}) error
}

// Hub tracks live connections, the user id to connection id mapping, and
// per-team broadcast rooms. All state is process local and rebuilt from
// scratch on restart. Delivery is best effort: none of the methods report
// failure to the caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]EventWriter
	users map[uint]string
	rooms map[uint]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]EventWriter),
		users: make(map[uint]string),
		rooms: make(map[uint]map[string]bool),
	}
}

// Register adds a connection to the hub and returns its connection id.
func (h *Hub) Register(w EventWriter) string {
	connID := uuid.NewString()

	h.mu.Lock()
	h.conns[connID] = w
	h.mu.Unlock()

	return connID
}

// Authenticate records the mapping from userID to connID, overwriting any
// previous connection for that user. The user id is client-asserted and not
// verified against the session that opened the connection.
func (h *Hub) Authenticate(connID string, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.conns[connID]; !exists {
		return
	}

	h.users[userID] = connID
	log.Printf("User authenticated on websocket: %d", userID)
}

// JoinTeam subscribes a connection to a team room. No membership check is
// performed here; enforcement happens at the REST layer.
func (h *Hub) JoinTeam(connID string, teamID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.conns[connID]; !exists {
		return
	}

	if h.rooms[teamID] == nil {
		h.rooms[teamID] = make(map[string]bool)
	}

	h.rooms[teamID][connID] = true
	log.Printf("Connection %s joined team room %d", connID, teamID)
}

// LeaveTeam unsubscribes a connection from a team room.
func (h *Hub) LeaveTeam(connID string, teamID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.rooms[teamID]; exists {
		delete(clients, connID)

		if len(clients) == 0 {
			delete(h.rooms, teamID)
		}
	}
}

// Disconnect removes a connection, its room subscriptions, and any user
// mapping pointing at it.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)

	for teamID, clients := range h.rooms {
		delete(clients, connID)

		if len(clients) == 0 {
			delete(h.rooms, teamID)
		}
	}

	for userID, id := range h.users {
		if id == connID {
			delete(h.users, userID)
			log.Printf("User disconnected from websocket: %d", userID)
			break
		}
	}
}

// BroadcastToTeam delivers an event to every connection in the team's room.
// Connections not currently joined receive nothing; there is no replay.
func (h *Hub) BroadcastToTeam(teamID uint, event string, data interface{}) {
	h.mu.RLock()
	clients, exists := h.rooms[teamID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy the recipients so the lock is not held while writing
	type recipient struct {
		connID string
		writer EventWriter
	}

	recipients := make([]recipient, 0, len(clients))
	for connID := range clients {
		if w, ok := h.conns[connID]; ok {
			recipients = append(recipients, recipient{connID: connID, writer: w})
		}
	}
	h.mu.RUnlock()

	for _, r := range recipients {
		if err := r.writer.WriteEvent(event, data); err != nil {
			log.Printf("Failed to broadcast %s to connection %s: %v", event, r.connID, err)
			h.Disconnect(r.connID)
		}
	}
}

// EmitToUser delivers an event directly to the user's live connection.
// Silently does nothing when the user has no known connection.
func (h *Hub) EmitToUser(userID uint, event string, data interface{}) {
	h.mu.RLock()
	connID, exists := h.users[userID]
	var writer EventWriter
	if exists {
		writer = h.conns[connID]
	}
	h.mu.RUnlock()

	if writer == nil {
		log.Printf("User %d not connected, cannot emit %s", userID, event)
		return
	}

	if err := writer.WriteEvent(event, data); err != nil {
		log.Printf("Failed to emit %s to user %d: %v", event, userID, err)
		h.Disconnect(connID)
	}
}

// ConnectedUsers returns the number of authenticated websocket users.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.users)
}
