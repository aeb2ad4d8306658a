package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"quickride/pkg/logger"
)

// Dispatcher handles decoded inbound frames for a connection.
type Dispatcher interface {
	HandleEvent(ctx context.Context, client *Client, event string, data json.RawMessage)
}

type Client struct {
	ID         string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	rooms      map[string]bool // guarded by hub.mutex
	dispatcher Dispatcher
	logger     *logger.Logger
}

func newClient(id string, hub *Hub, conn *websocket.Conn, dispatcher Dispatcher) *Client {
	return &Client{
		ID:         id,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, hub.options.SendBufferSize),
		rooms:      make(map[string]bool),
		dispatcher: dispatcher,
		logger:     hub.logger.WithSocketID(id),
	}
}

// Reply sends a frame back to this client only.
func (c *Client) Reply(event string, payload interface{}) bool {
	return c.hub.SendToConnection(c.ID, event, payload)
}

// enqueue writes straight to the send buffer. Only safe before the client is
// registered, while nothing else can close send.
func (c *Client) enqueue(event string, payload interface{}) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	c.send <- data
	return nil
}

func (c *Client) JoinRoom(roomID string) {
	c.hub.JoinRoom(c, roomID)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	opts := c.hub.options
	c.conn.SetReadLimit(opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			c.Reply(EventError, ErrorPayload{Message: "Invalid message format"})
			continue
		}

		if c.dispatcher == nil {
			continue
		}
		c.dispatcher.HandleEvent(ctx, c, env.Event, env.Data)
	}
}

// writePump is the only writer on conn, so frames leave in enqueue order.
func (c *Client) writePump() {
	opts := c.hub.options
	ticker := time.NewTicker(opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
