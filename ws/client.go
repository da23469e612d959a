package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"mediahub/chat-center/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client represents a single WebSocket subscriber to the message feed.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	logger *utils.Logger
}

func NewClient(conn *websocket.Conn, hub *Hub, logger *utils.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 64),
		logger: logger,
	}
}

// Enqueue queues a payload for delivery without blocking the broadcaster.
func (c *Client) Enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Dropping message for slow WebSocket client")
	}
}

// Serve runs the read and write pumps until the connection closes.
func (c *Client) Serve() {
	c.hub.Register(c)
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	done := make(chan struct{})
	go c.writeLoop(done)
	c.readLoop()
	close(done)
}

// readLoop discards inbound frames; the feed is one-way. It exists to
// answer pongs and to detect the peer closing the connection.
func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("WebSocket read ended", "error", err)
			}
			return
		}
	}
}

func (c *Client) writeLoop(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
