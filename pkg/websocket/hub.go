package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quickride/pkg/logger"
	"quickride/pkg/metrics"
)

type Options struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
	WriteWait        time.Duration
	MaxMessageSize   int64
	SendBufferSize   int
	AllowedOrigins   []string
}

func (o Options) withDefaults() Options {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = 1024
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = 1024
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongTimeout {
		o.PingInterval = (o.PongTimeout * 9) / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 8192
	}
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = 256
	}
	return o
}

// Hub owns the connection and room registries. One Hub is built at startup
// and shared by everything that pushes to clients.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	options    Options
	logger     *logger.Logger
	mutex      sync.RWMutex
}

func NewHub(options Options, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		options:    options.withDefaults(),
		logger:     log,
	}
}

// Run processes registrations until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mutex.Lock()
		for _, client := range h.clients {
			h.removeLocked(client)
		}
		h.mutex.Unlock()
	}()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client.ID] = client
	metrics.RealtimeConnections.Inc()
	h.logger.WithSocketID(client.ID).Debug("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.removeLocked(client) {
		h.logger.WithSocketID(client.ID).Debug("Client unregistered")
	}
}

// removeLocked drops client from every registry. Callers hold the write lock.
func (h *Hub) removeLocked(client *Client) bool {
	current, ok := h.clients[client.ID]
	if !ok || current != client {
		return false
	}
	delete(h.clients, client.ID)
	close(client.send)
	metrics.RealtimeConnections.Dec()

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	client.rooms = nil
	return true
}

func (h *Hub) dropClients(clients []*Client) {
	if len(clients) == 0 {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, client := range clients {
		if h.removeLocked(client) {
			h.logger.WithSocketID(client.ID).Warn("Client send buffer full, dropping connection")
		}
	}
}

// SendToConnection enqueues one frame for connID. It reports whether the
// frame was queued; unknown ids are a logged no-op.
func (h *Hub) SendToConnection(connID, event string, payload interface{}) bool {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Failed to encode frame")
		return false
	}

	h.mutex.RLock()
	client, ok := h.clients[connID]
	var full bool
	if ok {
		select {
		case client.send <- data:
		default:
			full = true
		}
	}
	h.mutex.RUnlock()

	switch {
	case !ok:
		metrics.RecordDelivery(event, metrics.OutcomeOffline)
		h.logger.LogDelivery(event, connID, false)
		return false
	case full:
		metrics.RecordDelivery(event, metrics.OutcomeDropped)
		h.dropClients([]*Client{client})
		return false
	}

	metrics.RecordDelivery(event, metrics.OutcomeDelivered)
	h.logger.LogDelivery(event, connID, true)
	return true
}

// BroadcastToRoom enqueues a frame for every member of roomID except the
// connection named by exceptID, returning how many were queued.
func (h *Hub) BroadcastToRoom(roomID, event string, payload interface{}, exceptID string) int {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Failed to encode frame")
		return 0
	}

	var dropped []*Client
	sent := 0

	h.mutex.RLock()
	for client := range h.rooms[roomID] {
		if client.ID == exceptID {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			dropped = append(dropped, client)
		}
	}
	h.mutex.RUnlock()

	for range dropped {
		metrics.RecordDelivery(event, metrics.OutcomeDropped)
	}
	for i := 0; i < sent; i++ {
		metrics.RecordDelivery(event, metrics.OutcomeDelivered)
	}
	h.dropClients(dropped)
	return sent
}

// JoinRoom adds client to roomID. Joining twice is a no-op.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) IsConnected(connID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[connID]
	return ok
}

func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
