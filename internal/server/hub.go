package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gridlife/internal/control"
	"gridlife/pkg/life"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the frame pushed to websocket clients.
type Message struct {
	// Seq increases with every published frame. Clients never receive a
	// frame older than the one they already hold.
	Seq    uint64         `json:"seq"`
	Event  string         `json:"event"`
	Status control.Status `json:"status"`
	Board  life.Snapshot  `json:"board"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	// seq of the newest frame queued on send; owned by the hub goroutine
	// once registered.
	seq uint64
}

type frame struct {
	seq  uint64
	data []byte
}

// Subscriber joins new websocket clients to a hub. Subscribe must capture the
// first frame and call join with it before any newer frame is published.
type Subscriber interface {
	Subscribe(ctx context.Context, join func(initial Message) error) error
}

// Hub fans board updates out to every connected websocket client.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan frame
	register   chan *client
	unregister chan *client
	done       chan struct{}
	log        *slog.Logger
}

// NewHub creates an idle hub. Start it with Run.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan frame, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("websocket client registered", "clients", len(h.clients))
		case c := <-h.unregister:
			h.drop(c)
		case f := <-h.broadcast:
			for c := range h.clients {
				if f.seq <= c.seq {
					continue
				}
				select {
				case c.send <- f.data:
					c.seq = f.seq
				default:
					// Slow consumer.
					h.drop(c)
				}
			}
		}
	}
}

// Publish queues msg for every client. It never blocks the caller; when the
// hub is backed up the update is dropped and the next one supersedes it.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal websocket message", "error", err)
		return
	}
	select {
	case h.broadcast <- frame{seq: msg.Seq, data: data}:
	default:
		h.log.Debug("websocket broadcast dropped", "generation", msg.Status.Generation)
	}
}

// ServeWS upgrades the request and joins the connection through sub. The
// client's first frame is the one sub captured; broadcasts queued before it
// are skipped.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sub Subscriber) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	err = sub.Subscribe(r.Context(), func(initial Message) error {
		return h.join(r.Context(), c, initial)
	})
	if err != nil {
		h.log.Debug("websocket subscribe failed", "error", err)
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// join queues initial on c and registers it. It returns once the hub has
// taken the client, so anything published afterwards reaches it.
func (h *Hub) join(ctx context.Context, c *client, initial Message) error {
	data, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("failed to marshal websocket message: %w", err)
	}
	c.seq = initial.Seq
	c.send <- data

	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Debug("websocket client unregistered", "clients", len(h.clients))
}

// readPump discards client input and detects disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
