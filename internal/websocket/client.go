package websocket

import (
	"context"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one connected flatmate on the change channel. Traffic is
// one-way: the hub pushes notifications, and anything the peer sends
// is drained and ignored.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	logger *slog.Logger
}

// NewClient wraps an accepted connection for the hub.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: hub.logger,
	}
}

// Run registers with the hub and serves the connection until it
// drops, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.pushLoop(ctx)
	c.drainLoop(ctx)
}

// drainLoop consumes inbound frames. A read error is the signal that
// the peer went away.
func (c *Client) drainLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			c.logger.Debug("change channel peer disconnected", "error", err)
			return
		}
	}
}

// pushLoop writes queued notifications and pings idle connections so
// half-dead peers get noticed and cleaned up.
func (c *Client) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub unregistered us and closed the channel.
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				c.logger.Debug("notification write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				c.logger.Debug("change channel ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
