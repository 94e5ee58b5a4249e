package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/sse"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

var ErrClientGone = errors.New("websocket client gone")

// Client is one chat connection. Stream events reach the socket through
// writePump; Emit blocks until writePump has taken the frame.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	logger logger.ILogger

	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	flushed chan struct{}
}

func newClient(conn *websocket.Conn, log logger.ILogger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:    conn,
		send:    make(chan []byte),
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
		flushed: make(chan struct{}),
	}
}

// Emit implements session.Emitter over the socket.
func (c *Client) Emit(ev sse.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.ctx.Done():
		return ErrClientGone
	}
}

// Context is cancelled once the connection is closed from either side.
func (c *Client) Context() context.Context {
	return c.ctx
}

func (c *Client) close() {
	c.once.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

// readPump hands each text message to handle, one at a time.
func (c *Client) readPump(handle func(payload []byte)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn(module, "Connection closed unexpectedly", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		handle(payload)
		// A long stream must not eat into the wait for the next pong.
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump owns every write on the connection. flushed is closed once it
// has stopped touching the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		close(c.flushed)
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug(module, "Write failed", map[string]interface{}{"error": err.Error()})
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
