// Package live carries editor frames to the studio as they are edited.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstudio/internal/scene"
)

// Message types on the live socket.
const (
	TypeSetFrame     = "set_frame"
	TypeInitRealtime = "init_realtime"
)

// Message is one live socket message.
type Message struct {
	Type  string       `json:"type"`
	Frame *scene.Frame `json:"frame,omitempty"`
}

var ErrClosed = errors.New("live: client closed")

// Sink receives the focused frame whenever it changes while live is on.
type Sink interface {
	Send(ctx context.Context, f scene.Frame) error
}

// Client is a Sink over a websocket. The connection is dialed on first use
// and redialed on the next Send after a write failure.
type Client struct {
	url          string
	dialer       *websocket.Dialer
	writeTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewClient returns a client for a ws:// or wss:// URL such as
// ws://studio.local:5000/ws/live.
func NewClient(url string) *Client {
	return &Client{
		url:          url,
		dialer:       &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		writeTimeout: 200 * time.Millisecond,
	}
}

func (c *Client) Send(ctx context.Context, f scene.Frame) error {
	return c.write(ctx, Message{Type: TypeSetFrame, Frame: &f})
}

// InitRealtime announces a realtime session to the studio.
func (c *Client) InitRealtime(ctx context.Context) error {
	return c.write(ctx, Message{Type: TypeInitRealtime})
}

func (c *Client) write(ctx context.Context, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			return fmt.Errorf("live dial %s: %w", c.url, err)
		}
		log.Info().Str("url", c.url).Msg("live channel connected")
		c.conn = conn
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(m); err != nil {
		_ = c.conn.Close()
		c.conn = nil
		return fmt.Errorf("live write: %w", err)
	}
	return nil
}

// Close closes the connection. Further sends fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeTimeout))
	_ = c.conn.Close()
	c.conn = nil
	return err
}
