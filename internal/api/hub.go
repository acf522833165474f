/*
Package api
File: hub.go
Description:
    The WebSocket Hub pushes session updates to every connected watcher.

    After each mutating request the server publishes a Message ("state",
    "day_advanced", "trade", ...) and the Hub fans it out to all sockets.
    Watchers are read-only; anything they send is logged and dropped.

    Architecture:
    - Hub: one per server, its Run loop owns the client registry.
    - Client: one browser connection.
    - ServeWs: upgrades a GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	sendBuffer     = 256
	broadcastQueue = 64
)

// Message is the JSON envelope for everything sent over the socket.
type Message struct {
	Type    string `json:"type"`    // "state", "trade", "travel", "day_advanced"
	Payload any    `json:"payload"` // Usually a game.Status or a receipt
	Sender  string `json:"sender"`  // Session ID of the game that produced it
}

// Client is a single connected watcher.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // Outbound frames, closed by the hub
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	connected  atomic.Int64 // Mirror of len(clients) for readers outside Run
	log        logrus.FieldLogger
}

// NewHub creates a hub. Start it with go hub.Run(ctx).
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.connected.Store(0)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
			h.log.WithField("clients", len(h.clients)).Info("ws: watcher connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connected.Store(int64(len(h.clients)))
				h.log.WithField("clients", len(h.clients)).Info("ws: watcher left")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow reader, cut it loose.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connected.Store(int64(len(h.clients)))
		}
	}
}

// Clients reports how many watchers are connected.
func (h *Hub) Clients() int { return int(h.connected.Load()) }

// Publish queues a message for every client. It never blocks the caller;
// when the queue is full the message is dropped.
func (h *Hub) Publish(msgType, sender string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: sender})
	if err != nil {
		h.log.WithError(err).WithField("type", msgType).Error("ws: encode message")
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.WithField("type", msgType).Warn("ws: broadcast queue full, message dropped")
	}
}

// upgrader accepts any origin; the server is meant for local dashboards.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and attaches the new client to the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws: upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection until it closes.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("ws: read")
			}
			return
		}
		c.hub.log.WithField("bytes", len(message)).Debug("ws: ignoring watcher message")
	}
}

// writePump forwards hub frames to the socket. It exits when send is closed.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
