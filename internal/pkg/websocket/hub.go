package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is pushed to every open connection of a user
type Event struct {
	// Type of event, e.g. "notification"
	Type string `json:"type"`

	// Payload is the JSON encoded entity the event is about
	Payload interface{} `json:"payload"`

	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	userID int64
	data   []byte
}

// Hub keeps the open connections of every user and fans events out to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	deliveries chan delivery
	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		deliveries: make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes registrations and deliveries until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().Int64("userID", client.userID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

// deliver sends to each connection of the user. Connections whose buffer
// is full are dropped.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.data:
		default:
			h.logger.Warn().Int64("userID", d.userID).Msg("Dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

// Push queues an event for a user. It never blocks: when the queue is full
// the event is dropped, the notification row is still in the database.
func (h *Hub) Push(userID int64, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to marshal websocket event")
		return
	}

	select {
	case h.deliveries <- delivery{userID: userID, data: data}:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", eventType).Msg("Websocket queue full, event dropped")
	}
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
