package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
)

// MessageType identifies a stream message.
type MessageType string

const (
	MessageHello  MessageType = "hello"
	MessageOp     MessageType = "op"
	MessageCommit MessageType = "commit"
)

// Message is sent to stream clients as JSON.
type Message struct {
	Type   MessageType         `json:"type"`
	Client string              `json:"client,omitempty"`
	Op     *display.Op         `json:"op,omitempty"`
	Commit *fiber.CommitReport `json:"commit,omitempty"`
	Hash   string              `json:"hash,omitempty"`
}

const (
	sendBuffer = 256
	writeWait  = 5 * time.Second
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans display mutations and commit reports out to WebSocket clients.
// Publishing never blocks: a client whose buffer is full is disconnected.
type Hub struct {
	clients  map[*client]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// hash is called for the hello message and after every commit.
	hash func() string
}

// NewHub creates a hub. A nil logger uses slog.Default.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With("component", "inspect.hub"),
	}
}

// HandleWebSocket upgrades the connection and streams messages until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	hello := Message{Type: MessageHello, Client: c.id}
	if h.hash != nil {
		hello.Hash = h.hash()
	}
	if data, err := json.Marshal(hello); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", "client", c.id)

	go h.writePump(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Debug("client disconnected", "client", c.id)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// PublishOp sends a display mutation to all clients.
func (h *Hub) PublishOp(op display.Op) {
	h.broadcast(Message{Type: MessageOp, Op: &op})
}

// NotifyCommit sends a commit report to all clients. It has the shape of a
// fiber.WithCommitObserver callback.
func (h *Hub) NotifyCommit(r fiber.CommitReport) {
	msg := Message{Type: MessageCommit, Commit: &r}
	if h.hash != nil {
		msg.Hash = h.hash()
	}
	h.broadcast(msg)
}

// broadcast queues a message for every client.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode message", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow client", "client", c.id)
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
