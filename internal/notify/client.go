package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/stut/displayproxy/internal/buttons"
)

// Client subscribes to the press stream of a running displayproxy.
type Client struct {
	url     string
	onPress func(buttons.Press)

	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewClient creates a client for the events endpoint at url
// (ws://host:port/events).
func NewClient(url string, onPress func(buttons.Press)) *Client {
	return &Client{
		url:     url,
		onPress: onPress,
		done:    make(chan struct{}),
	}
}

// Connect dials the server and starts delivering presses.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("events dial: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close shuts down the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				slog.Debug("Events read ended", "error", err)
			}
			return
		}
		var p buttons.Press
		if err := json.Unmarshal(data, &p); err != nil {
			slog.Warn("Ignoring malformed event", "error", err)
			continue
		}
		if c.onPress != nil {
			c.onPress(p)
		}
	}
}
