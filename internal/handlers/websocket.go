package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *WebSocketHub
}

// WebSocketHub fans room events out to subscribed connections. It is
// the production implementation of the engine's Broadcaster interface.
type WebSocketHub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	Address string
	Conn    *websocket.Conn

	mu    sync.Mutex
	rooms map[string]struct{}
}

type Message struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id,omitempty"`
	Data   interface{} `json:"data"`
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := &WebSocketHub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub}
}

// Hub exposes the hub for wiring into the orchestrator.
func (h *WebSocketHandler) Hub() *WebSocketHub {
	return h.hub
}

// Publish satisfies services.Broadcaster. Fire-and-forget: a full
// buffer drops the event rather than blocking the engine.
func (hub *WebSocketHub) Publish(roomID, eventType string, payload interface{}) {
	msg := &Message{
		Type:   eventType,
		RoomID: roomID,
		Data:   payload,
	}

	select {
	case hub.broadcast <- msg:
	default:
		log.Printf("[WS] Broadcast buffer full, dropping %s for %s", eventType, roomID)
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	address := c.GetString("address")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Address: address,
		Conn:    conn,
		rooms:   make(map[string]struct{}),
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		client.send(&Message{
			Type: "PONG",
			Data: gin.H{"timestamp": time.Now().Unix()},
		})
	case "SUBSCRIBE_ROOM":
		if roomID, ok := msg.Data.(string); ok {
			h.hub.subscribe(client, roomID)
			client.send(&Message{
				Type:   "SUBSCRIBED",
				RoomID: roomID,
			})
		}
	case "UNSUBSCRIBE_ROOM":
		if roomID, ok := msg.Data.(string); ok {
			h.hub.unsubscribe(client, roomID)
		}
	}
}

func (c *Client) send(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.WriteJSON(msg)
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			log.Printf("[WS] Client connected: %s", client.Address)

		case client := <-hub.unregister:
			hub.mu.Lock()
			for roomID := range client.rooms {
				if subs, ok := hub.rooms[roomID]; ok {
					delete(subs, client)
					if len(subs) == 0 {
						delete(hub.rooms, roomID)
					}
				}
			}
			hub.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s", client.Address)

		case message := <-hub.broadcast:
			hub.deliver(message)
		}
	}
}

func (hub *WebSocketHub) subscribe(client *Client, roomID string) {
	hub.mu.Lock()
	if hub.rooms[roomID] == nil {
		hub.rooms[roomID] = make(map[*Client]struct{})
	}
	hub.rooms[roomID][client] = struct{}{}
	hub.mu.Unlock()

	client.mu.Lock()
	client.rooms[roomID] = struct{}{}
	client.mu.Unlock()
}

func (hub *WebSocketHub) unsubscribe(client *Client, roomID string) {
	hub.mu.Lock()
	if subs, ok := hub.rooms[roomID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(hub.rooms, roomID)
		}
	}
	hub.mu.Unlock()

	client.mu.Lock()
	delete(client.rooms, roomID)
	client.mu.Unlock()
}

func (hub *WebSocketHub) deliver(message *Message) {
	hub.mu.RLock()
	subs := make([]*Client, 0, len(hub.rooms[message.RoomID]))
	for client := range hub.rooms[message.RoomID] {
		subs = append(subs, client)
	}
	hub.mu.RUnlock()

	for _, client := range subs {
		client.send(message)
	}
}
