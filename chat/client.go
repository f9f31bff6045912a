package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// messages are capped at 300 characters in storage; the limit leaves
	// headroom for the JSON framing
	maxMessageSize = 1024

	sendBuffer = 32
)

// MessageHandler persists an inbound chat message and returns the
// payload to broadcast to the room. Returning an error drops the
// message without a broadcast.
type MessageHandler func(content string) ([]byte, error)

type inboundFrame struct {
	Message string `json:"message"`
}

// Client couples one websocket connection to one room in the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	roomID string
	connID int64
	send   chan []byte
	handle MessageHandler
}

// NewClient registers the connection with the hub and starts its read
// and write pumps. Authorization has already happened by the time a
// client is constructed.
func NewClient(hub *Hub, conn *websocket.Conn, roomID string, handle MessageHandler) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		roomID: roomID,
		send:   make(chan []byte, sendBuffer),
		handle: handle,
	}
	c.connID = hub.Register(roomID, c)

	go c.writePump()
	go c.readPump()
	return c
}

// Deliver queues a broadcast payload for the write pump. It never
// blocks: a full buffer means the connection is too slow and reports
// failure so the hub can drop it.
func (c *Client) Deliver(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.roomID, c.connID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		// empty messages are dropped silently
		if frame.Message == "" {
			continue
		}

		payload, err := c.handle(frame.Message)
		if err != nil {
			continue
		}
		c.hub.Broadcast(c.roomID, payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
