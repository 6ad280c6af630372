package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Message types
const (
	MsgTypeSubscribe      = "subscribe"
	MsgTypeSightingUpdate = "sighting_update"
	MsgTypeMatchUpdate    = "match_update"
	MsgTypeCaseUpdate     = "case_update"
)

// Client is a connected subscriber. Latitude/Longitude scope what it
// receives when a subscription carries a watch area.
type Client struct {
	Conn      *websocket.Conn
	UserID    string
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

// Message is the envelope for incoming subscriber frames.
type Message struct {
	Type      string  `json:"type"`
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	RadiusKM  float64 `json:"radius_km,omitempty"`
}
