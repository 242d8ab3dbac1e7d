package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	HeartbeatInterval = 30 * time.Second
	HeartbeatTimeout  = 45 * time.Second

	maxMessageSize = 64 * 1024
	sendBufferSize = 256

	// Inbound messages per second a connection may send; extra ones are
	// dropped.
	messagesPerSecond = 60
	messageBurst      = 120
)

// Client is one websocket connection. Outbound messages go through send and
// are written by writePump only.
type Client struct {
	id       string
	roomID   string
	username string

	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id, roomID, username string, conn *websocket.Conn) *Client {
	return &Client{
		id:       id,
		roomID:   roomID,
		username: username,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		limiter:  rate.NewLimiter(rate.Limit(messagesPerSecond), messageBurst),
		done:     make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// enqueue never blocks. A client that can't keep up is disconnected; its
// read loop then fails and the usual leave path runs.
func (c *Client) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		zap.S().Warnf("[enqueue] room=%s player=%s send buffer full, closing", c.roomID, c.id)
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump delivers inbound frames to handle until the connection fails or
// handle asks to stop.
func (c *Client) readPump(handle func(c *Client, raw []byte) (stop bool)) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(HeartbeatTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(HeartbeatTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Infof("[readPump] room=%s player=%s read error: %v", c.roomID, c.id, err)
			}
			return
		}

		if !c.limiter.Allow() {
			zap.S().Debugf("[readPump] room=%s player=%s rate limited, dropping message", c.roomID, c.id)
			continue
		}

		if handle(c, raw) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.S().Debugf("[writePump] room=%s player=%s write failed: %v", c.roomID, c.id, err)
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
