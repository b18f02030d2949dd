package api

import (
	"sync"
	"time"

	reader "memwatch/internal/memory"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBufferSize      = 64
	broadcastBufferSize = 256
	writeWait           = 5 * time.Second
)

// Message is one websocket frame pushed to stream clients
type Message struct {
	Type      string      `json:"type"` // "usage", "processes"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub fans published values out to every connected stream client
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client

	broadcast  chan Message
	register   chan *client
	unregister chan string
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewHub starts the hub loop
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Hub{
		logger:     logger.With(zap.String("component", "stream-hub")),
		clients:    make(map[string]*client),
		broadcast:  make(chan Message, broadcastBufferSize),
		register:   make(chan *client),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, c := range h.clients {
				delete(h.clients, id)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("stream client connected", zap.String("client", c.id), zap.Int("total", total))

		case id := <-h.unregister:
			h.mu.Lock()
			if c, exists := h.clients[id]; exists {
				delete(h.clients, id)
				close(c.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("stream client disconnected", zap.String("client", id), zap.Int("total", total))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow client, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues msg for every client. It never blocks; a full queue
// drops the message.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Debug("stream broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

// Attach pushes every publish of the views to the stream clients
func (h *Hub) Attach(
	usage observable.View[reader.MemorySnapshot],
	topProcesses observable.View[[]ranking.ProcessUsage],
) (detach func()) {
	unsubscribeUsage := usage.Subscribe(func(snapshot reader.MemorySnapshot) {
		h.Broadcast(Message{Type: "usage", Timestamp: snapshot.Timestamp, Data: newUsageResponse(snapshot)})
	})
	unsubscribeProcesses := topProcesses.Subscribe(func(processes []ranking.ProcessUsage) {
		h.Broadcast(Message{Type: "processes", Timestamp: time.Now(), Data: processes})
	})

	return func() {
		unsubscribeUsage()
		unsubscribeProcesses()
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(id string) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

// Close disconnects every client and stops the hub loop
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	h.wg.Wait()
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c.id)
		_ = c.conn.Close()
	}()

	for {
		// clients only send control frames; anything else is ignored
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("stream write failed", zap.String("client", c.id), zap.Error(err))
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
