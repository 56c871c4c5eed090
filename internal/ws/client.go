package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/augustos0204/room-stream-api/internal/identity"
)

// Client is one live connection. Identity is fixed at connect time; token
// is only set for bearer-authenticated connections and is what the
// revalidation loop re-checks.
type Client struct {
	ID       string
	Identity identity.Identity

	conn  *websocket.Conn
	token string

	writeMu sync.Mutex

	// cancelValidation tears down the revalidation goroutine. It must be
	// called on every exit path; cleanup() is the single place that does.
	validationMu     sync.Mutex
	cancelValidation context.CancelFunc

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, conn: conn}
}

// Send writes one frame. Broadcasts are fire-and-forget: a failed write
// closes the connection and the read loop performs the cleanup.
func (c *Client) Send(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Printf("ws: marshal %s frame: %v", event, err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("ws: write to %s: %v", c.ID, err)
		c.close()
	}
}

func (c *Client) setValidationCancel(cancel context.CancelFunc) {
	c.validationMu.Lock()
	defer c.validationMu.Unlock()
	c.cancelValidation = cancel
}

func (c *Client) stopValidation() {
	c.validationMu.Lock()
	defer c.validationMu.Unlock()
	if c.cancelValidation != nil {
		c.cancelValidation()
		c.cancelValidation = nil
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}
