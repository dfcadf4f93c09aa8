package websocket

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub.
// topics is guarded by the hub's mutex.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	topics map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, buffer),
		topics: make(map[string]struct{}),
	}
}

func (c *Client) ID() uint64 {
	return c.id
}

// Start registers the client and runs its pumps.
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.log.Error("failed to set read deadline", zap.Error(err))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected websocket close", zap.Uint64("client_id", c.id), zap.Error(err))
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inbound) {
	switch msg.Type {
	case MessageTypeJoinExpertRoom, MessageTypeLeaveExpertRoom:
		var expertID string
		if err := json.Unmarshal(msg.Data, &expertID); err != nil || strings.TrimSpace(expertID) == "" {
			c.hub.log.Debug("ignoring room message without expert id", zap.Uint64("client_id", c.id), zap.String("type", msg.Type))
			return
		}
		topic := ExpertTopic(strings.TrimSpace(expertID))
		if msg.Type == MessageTypeJoinExpertRoom {
			c.hub.Join(c, topic)
			c.hub.log.Debug("client joined room", zap.Uint64("client_id", c.id), zap.String("room", topic))
		} else {
			c.hub.Leave(c, topic)
			c.hub.log.Debug("client left room", zap.Uint64("client_id", c.id), zap.String("room", topic))
		}
	case MessageTypePing:
		c.hub.sendTo(c, Message{Type: MessageTypePong})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.log.Debug("failed to write websocket message", zap.Uint64("client_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
