package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/teamtodo-dev/teamtodo/internal/types"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// clientMessage is what clients send over the socket: authenticate with a
// user id, or join/leave a team room.
type clientMessage struct {
	Type   string `json:"type"`
	UserID uint   `json:"userId"`
	TeamID uint   `json:"teamId"`
}

// wsConn wraps a websocket connection so the hub can write to it from
// multiple goroutines with a deadline per message.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteEvent(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(ws.Frame{Event: event, Data: data})
}

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

func (h *WSHandler) Serve(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Set up connection parameters
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	client := &wsConn{conn: conn}
	connID := h.hub.Register(client)

	// Closed when the read loop exits, so the ping goroutine does not block
	// on a stopped ticker forever
	done := make(chan struct{})

	// Clean up when connection closes
	defer func() {
		close(done)
		h.hub.Disconnect(connID)
		conn.Close()

		log.Printf("WebSocket connection closed: %s", connID)
	}()

	// Send welcome message
	if err := client.WriteEvent("connected", gin.H{"message": "WebSocket connection established"}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		// Send pings periodically until the connection goes away
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				client.mu.Lock()
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					client.mu.Unlock()
					log.Printf("Failed to set write deadline for connection %s: %v", connID, err)
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					client.mu.Unlock()
					log.Printf("Ping failed for connection %s: %v", connID, err)
					return
				}
				client.mu.Unlock()
			}
		}
	}()

	for {
		// Set read deadline for each message
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for connection %s: %v", connID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for connection %s: %v", connID, err)
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var msg clientMessage

		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message from connection %s: %v", connID, err)
			continue
		}

		switch msg.Type {
		case "authenticate":
			// The asserted user id is taken as-is, matching the upstream
			// contract: no check against the session that opened the socket.
			h.hub.Authenticate(connID, msg.UserID)
		case "join-team":
			h.hub.JoinTeam(connID, msg.TeamID)
		case "leave-team":
			h.hub.LeaveTeam(connID, msg.TeamID)
		default:
			log.Printf("Unknown message type %q from connection %s", msg.Type, connID)
		}
	}
}
