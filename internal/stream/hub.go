package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// per-client queue; a client that falls this far behind is dropped
	sendBuffer = 64

	// clients only send control frames
	maxMessageSize = 512
)

// EventType names a pipeline progress event
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventStepRecorded EventType = "step.recorded"
	EventRunFinished  EventType = "run.finished"
)

// Event is one JSON message sent to subscribers
type Event struct {
	Type      EventType                 `json:"type"`
	RequestID string                    `json:"requestId"`
	Step      *contracts.ProcessingStep `json:"step,omitempty"`
	Error     string                    `json:"error,omitempty"`
	At        time.Time                 `json:"at"`
}

// Hub broadcasts processing-step events to WebSocket subscribers
// ⭐ SSOT: 실시간 진행 상황 push는 여기서만
//
// Subscribers may pass ?requestId=... to receive a single run's events.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn      *websocket.Conn
	send      chan Event
	requestID string
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  log,
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
}

// RunStarted implements brain.StepObserver
func (h *Hub) RunStarted(requestID string) {
	h.broadcast(Event{Type: EventRunStarted, RequestID: requestID})
}

// StepRecorded implements brain.StepObserver. The phase output is not sent.
func (h *Hub) StepRecorded(requestID string, step contracts.ProcessingStep) {
	step.Output = nil
	h.broadcast(Event{Type: EventStepRecorded, RequestID: requestID, Step: &step})
}

// RunFinished implements brain.StepObserver
func (h *Hub) RunFinished(requestID string, result *contracts.IdeaGenerationResult, err error) {
	ev := Event{Type: EventRunFinished, RequestID: requestID}
	if err != nil {
		ev.Error = err.Error()
	}
	h.broadcast(ev)
}

// ServeHTTP upgrades the connection and streams events until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn:      conn,
		send:      make(chan Event, sendBuffer),
		requestID: r.URL.Query().Get("requestId"),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Len returns the number of connected subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"remote":     c.conn.RemoteAddr().String(),
		"request_id": c.requestID,
	}).Debug("Stream subscriber connected")
}

// unregister is safe to call more than once
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(ev Event) {
	ev.At = h.now()

	var slow []*client

	h.mu.RLock()
	for c := range h.clients {
		if c.requestID != "" && c.requestID != ev.RequestID {
			continue
		}
		select {
		case c.send <- ev:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WithField("remote", c.conn.RemoteAddr().String()).Warn("Dropping slow stream subscriber")
		h.unregister(c)
	}
}

// readPump discards client messages and keeps the read deadline fresh via pongs
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes to the connection
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
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
