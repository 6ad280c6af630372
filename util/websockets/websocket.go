package websockets

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/bwise1/findlink/internal/match"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketManager initializes a WebSocketManager
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
}

// Run starts the WebSocket manager
func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.Conn] = client
			manager.mu.Unlock()

		case conn := <-manager.unregister:
			manager.mu.Lock()
			if client, exists := manager.clients[conn]; exists {
				delete(manager.clients, conn)
				conn.Close()
				log.Printf("client %s disconnected", client.UserID)
			}
			manager.mu.Unlock()

		case message := <-manager.broadcast:
			manager.mu.Lock()
			for _, client := range manager.clients {
				if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Conn.Close()
					delete(manager.clients, client.Conn)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// HandleConnections upgrades HTTP requests to WebSocket connections
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	client := &Client{Conn: conn}
	manager.register <- client

	defer func() {
		manager.unregister <- conn
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			manager.unregister <- conn
			break
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Println("invalid websocket frame:", err)
			continue
		}

		if message.Type == MsgTypeSubscribe {
			client.UserID = message.UserID
			client.Latitude = message.Latitude
			client.Longitude = message.Longitude
			client.RadiusKM = message.RadiusKM
		}
	}
}

// Broadcast sends a payload to every connected client.
func (manager *WebSocketManager) Broadcast(payload []byte) {
	manager.broadcast <- payload
}

// BroadcastNearby sends a payload only to clients whose watch area covers
// the event location. Clients with no watch radius receive everything.
func (manager *WebSocketManager) BroadcastNearby(payload []byte, lat, lon float64) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	event := match.Coordinate{Lat: lat, Lon: lon}
	for _, client := range manager.clients {
		if client.RadiusKM > 0 {
			watch := match.Coordinate{Lat: client.Latitude, Lon: client.Longitude}
			if match.Distance(watch, event) > client.RadiusKM {
				continue
			}
		}
		if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			client.Conn.Close()
			delete(manager.clients, client.Conn)
		}
	}
}
