package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"crm/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is enforced by CORS on the API; the token gates the socket
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ActorResolver maps a raw token to an authenticated actor
type ActorResolver func(ctx context.Context, token string) (model.Actor, error)

// Client represents a single connected WebSocket client
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Actor model.Actor
}

// Message is the JSON frame pushed to subscribers
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// envelope pairs an encoded frame with the representative owning its record
type envelope struct {
	owner   uuid.UUID
	payload []byte
}

// Hub maintains the set of active clients and routes each event to the
// clients allowed to see the record it describes
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected (user %s)", client.Actor.ID)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Println("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Actor.CanAccess(message.owner) {
					continue
				}
				select {
				case client.Send <- message.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for the owner's connections and for admins. It
// never blocks the caller; events are dropped when the queue is full.
func (h *Hub) Publish(owner uuid.UUID, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Printf("failed to encode %s event: %v", event, err)
		return
	}
	select {
	case h.broadcast <- envelope{owner: owner, payload: payload}:
	default:
		log.Printf("websocket queue full, dropping %s event", event)
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection so close frames are noticed
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
	}
}

// ServeWs authenticates the token query parameter and upgrades the connection.
func ServeWs(hub *Hub, c *gin.Context, resolve ActorResolver) {
	tokenString := c.Query("token")
	if tokenString == "" {
		log.Println("WebSocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	actor, err := resolve(c.Request.Context(), tokenString)
	if err != nil {
		log.Println("WebSocket connection rejected:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), Actor: actor}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
