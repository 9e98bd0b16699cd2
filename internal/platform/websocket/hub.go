// Package websocket pushes laboratory events to connected browser sessions.
// A hub tracks clients per topic; doctors subscribe to their own topic
// ("doctor:<id>") and lab staff to the shared "laboratory" channel.
package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// TopicLaboratory receives every event; lab staff subscribe here.
const TopicLaboratory = "laboratory"

// DoctorTopic names the per-doctor topic for events on their requests.
func DoctorTopic(doctorID string) string {
	return "doctor:" + doctorID
}

// Event is the payload pushed to subscribed clients.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// clientMessage is an inbound subscribe/unsubscribe command.
type clientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Conn abstracts the underlying connection for tests.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected session.
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
	hub    *Hub
	conn   Conn
}

// Hub manages clients and their topic subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	all     map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and its initial topic subscriptions.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
}

// Unregister removes a client from every topic and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	for _, topic := range client.Topics {
		if subs, ok := h.clients[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.clients, topic)
			}
		}
	}
	delete(h.all, client)
	close(client.Send)
}

// Subscribe adds topics to a registered client.
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
	client.Topics = append(client.Topics, topics...)
}

// Unsubscribe removes topics from a registered client.
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		rm[t] = struct{}{}
		if subs, ok := h.clients[t]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.clients, t)
			}
		}
	}

	kept := client.Topics[:0]
	for _, t := range client.Topics {
		if _, drop := rm[t]; !drop {
			kept = append(kept, t)
		}
	}
	client.Topics = kept
}

// Broadcast sends the event to every subscriber of its topic. Clients with a
// full send buffer are skipped rather than blocked on.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", event.Topic).Msg("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[event.Topic] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn().Str("client", client.ID).Msg("send buffer full, dropping event")
		}
	}
}

// SubscriberCount reports the number of clients on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades the connection and serves it until the client disconnects.
// Initial topics come from the "topics" query parameter (comma-separated);
// clients may also send {"action":"subscribe","topics":[...]} messages.
func Handler(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return fmt.Errorf("websocket upgrade: %w", err)
		}

		var topics []string
		if raw := c.QueryParam("topics"); raw != "" {
			topics = splitTopics(raw)
		}

		client := &Client{
			ID:     uuid.NewString(),
			Topics: topics,
			Send:   make(chan []byte, 32),
			hub:    hub,
			conn:   conn,
		}
		hub.Register(client)

		go client.writeLoop()
		client.readLoop()
		return nil
	}
}

func splitTopics(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Action {
		case "subscribe":
			c.hub.Subscribe(c, msg.Topics)
		case "unsubscribe":
			c.hub.Unsubscribe(c, msg.Topics)
		}
	}
}

func (c *Client) writeLoop() {
	for payload := range c.Send {
		if err := c.conn.WriteMessage(gorillawebsocket.TextMessage, payload); err != nil {
			return
		}
	}
}
