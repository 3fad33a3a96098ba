package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coremem/coremem/pkg/api/events"
	"github.com/coremem/coremem/pkg/logger"
)

const (
	defaultWSMaxConnections = 100
	defaultPingInterval     = 30 * time.Second
	defaultPongTimeout      = 10 * time.Second
	wsWriteTimeout          = 10 * time.Second
	wsQueueSize             = 32
	wsMaxMessageBytes       = 4 << 10
)

// WebSocketConfig configures the event stream.
type WebSocketConfig struct {
	AllowedOrigins []string
	MaxConnections int
	PingInterval   time.Duration
	PongTimeout    time.Duration
}

// EventMessage is one frame on /ws/events. Type is a controller event such
// as "memory.stored" or "search.completed". Seq comes from the broadcaster
// and is zero for events sent directly through Broadcast.
type EventMessage struct {
	Seq       uint64    `json:"seq,omitempty"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// controlMessage is sent by clients to narrow the stream. A topic is a full
// event type or its group ("memory", "search", "state").
type controlMessage struct {
	Type   string   `json:"type"`
	Topic  string   `json:"topic,omitempty"`
	Topics []string `json:"topics,omitempty"`
}

// wsSubscriber is one connected client. A subscriber with no topics gets
// every event.
type wsSubscriber struct {
	conn  *websocket.Conn
	queue chan []byte

	mu     sync.RWMutex
	topics map[string]struct{}

	closeOnce sync.Once
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{
		conn:   conn,
		queue:  make(chan []byte, wsQueueSize),
		topics: make(map[string]struct{}),
	}
}

func (s *wsSubscriber) apply(msg controlMessage) {
	topics := msg.Topics
	if t := strings.TrimSpace(msg.Topic); t != "" {
		topics = append(topics, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		switch strings.ToLower(msg.Type) {
		case "subscribe":
			s.topics[t] = struct{}{}
		case "unsubscribe":
			delete(s.topics, t)
		}
	}
}

func (s *wsSubscriber) wants(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.topics) == 0 {
		return true
	}
	group, _, _ := strings.Cut(eventType, ".")
	_, exact := s.topics[eventType]
	_, grouped := s.topics[group]
	return exact || grouped
}

func (s *wsSubscriber) close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
}

// WebSocketHandler serves /ws/events and relays controller events to every
// connected subscriber.
type WebSocketHandler struct {
	log      logger.Logger
	cfg      WebSocketConfig
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[*wsSubscriber]struct{}
}

// NewWebSocketHandler creates the event stream handler.
func NewWebSocketHandler(log logger.Logger, cfg WebSocketConfig) *WebSocketHandler {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultWSMaxConnections
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultPongTimeout
	}
	if log == nil {
		log = logger.Discard()
	}

	h := &WebSocketHandler{
		log:  log,
		cfg:  cfg,
		subs: make(map[*wsSubscriber]struct{}),
	}
	origins := append([]string(nil), cfg.AllowedOrigins...)
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		return originAllowed(r, origins)
	}
	return h
}

// ServeHTTP upgrades the connection and blocks until the client goes away.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}
	if h.Connections() >= h.cfg.MaxConnections {
		http.Error(w, "websocket connection limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := newWSSubscriber(conn)
	if !h.add(sub) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "connection limit reached"),
			time.Now().Add(wsWriteTimeout))
		_ = conn.Close()
		return
	}
	defer h.remove(sub)

	go h.writeLoop(sub)
	h.readLoop(sub)
}

func (h *WebSocketHandler) add(sub *wsSubscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) >= h.cfg.MaxConnections {
		return false
	}
	h.subs[sub] = struct{}{}
	return true
}

// remove closes the subscriber's queue under the lock, so Broadcast never
// sends on a closed queue.
func (h *WebSocketHandler) remove(sub *wsSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		sub.close()
	}
}

// readLoop applies control messages and keeps the read deadline moving on
// pongs. It returns when the connection fails or closes.
func (h *WebSocketHandler) readLoop(sub *wsSubscriber) {
	wait := h.cfg.PingInterval + h.cfg.PongTimeout
	sub.conn.SetReadLimit(wsMaxMessageBytes)
	_ = sub.conn.SetReadDeadline(time.Now().Add(wait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed", "error", err)
			}
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug("ignoring websocket message", "error", err)
			continue
		}
		sub.apply(msg)
	}
}

// writeLoop owns all writes on the connection. A closed queue ends the
// stream with a normal close frame.
func (h *WebSocketHandler) writeLoop(sub *wsSubscriber) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.queue:
			if !ok {
				_ = sub.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteTimeout))
				return
			}
			_ = sub.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// Broadcast queues event for every interested subscriber. A subscriber whose
// queue is full is disconnected rather than allowed to stall the others.
func (h *WebSocketHandler) Broadcast(event EventMessage) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	frame, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var slow []*wsSubscriber
	h.mu.RLock()
	for sub := range h.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.queue <- frame:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.log.Warn("dropping slow websocket subscriber", "event", event.Type)
		h.remove(sub)
	}
	return nil
}

// Forward relays broadcaster events until ctx is done or the broadcaster
// is closed.
func (h *WebSocketHandler) Forward(ctx context.Context, b *events.Broadcaster) {
	ch := b.Subscribe(wsQueueSize)
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			msg := EventMessage{Seq: event.Seq, Type: event.Type, Timestamp: event.Timestamp, Payload: event.Payload}
			if err := h.Broadcast(msg); err != nil {
				h.log.Warn("websocket broadcast failed", "type", event.Type, "error", err)
			}
		}
	}
}

// Connections returns the number of connected subscribers.
func (h *WebSocketHandler) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
}

// originAllowed accepts same-host requests, requests without an Origin
// header, and the configured origins.
func originAllowed(r *http.Request, allowed []string) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(strings.TrimSpace(a), origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}
