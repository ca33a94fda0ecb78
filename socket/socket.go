// Package socket maintains one bidirectional websocket to the game server.
// Messages in both directions are JSON envelopes named by an event string.
// Connection failures never escape as errors to callers; they are converted
// into "error" and "disconnect" envelopes and delivered like any other
// inbound message.
package socket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope is the wire framing for every message, inbound and outbound.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Events synthesized locally for connection lifecycle, mirroring the
// transport-level events of the server's socket protocol.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventError      = "error"
)

type errorData struct {
	Message string `json:"message"`
}

// link is one live connection with its pumps.
type link struct {
	conn *websocket.Conn
	send chan Envelope
}

// Client owns at most one live connection at a time. Reconnecting closes the
// previous connection before dialing. Inbound envelopes are handed to a
// single sink callback in arrival order.
type Client struct {
	url  string
	sink func(Envelope)

	mu   sync.Mutex
	gen  int
	link *link
}

func New(url string, sink func(Envelope)) *Client {
	return &Client{url: url, sink: sink}
}

// Connect dials the server asynchronously, authenticating with token. A
// failed dial surfaces as an "error" envelope followed by "disconnect".
func (c *Client) Connect(token string) {
	c.mu.Lock()
	closed := c.dropLinkLocked()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if closed {
		c.sink(Envelope{Event: EventDisconnect})
	}

	go c.dial(gen, token)
}

// Close tears down the current connection, if any. Safe to call repeatedly
// and while disconnected.
func (c *Client) Close() {
	c.mu.Lock()
	closed := c.dropLinkLocked()
	c.gen++
	c.mu.Unlock()

	if closed {
		c.sink(Envelope{Event: EventDisconnect})
	}
}

// Emit sends a named message, fire and forget. Dropped when disconnected or
// when the outbound buffer is full, matching the server's view of a client
// that went away mid-send.
func (c *Client) Emit(event string, payload any) {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return
		}
		data = encoded
	}

	// The send stays under the lock so the buffer cannot be closed out from
	// under us by a concurrent Close; it never blocks.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link == nil {
		return
	}

	select {
	case c.link.send <- Envelope{Event: event, Data: data}:
	default:
	}
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link != nil
}

// dropLinkLocked closes the active connection and reports whether one existed.
func (c *Client) dropLinkLocked() bool {
	if c.link == nil {
		return false
	}
	close(c.link.send)
	_ = c.link.conn.Close()
	c.link = nil
	return true
}

func (c *Client) dial(gen int, token string) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(c.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.sink(failure("unable to reach game server: " + err.Error()))
		c.sink(Envelope{Event: EventDisconnect})
		return
	}

	l := &link{conn: conn, send: make(chan Envelope, 8)}

	c.mu.Lock()
	if gen != c.gen {
		// A newer Connect or Close won the race; discard this dial.
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.link = l
	c.mu.Unlock()

	go l.writePump()

	c.sink(Envelope{Event: EventConnect})
	c.readPump(gen, l)
}

func (c *Client) readPump(gen int, l *link) {
	defer func() {
		_ = l.conn.Close()

		c.mu.Lock()
		current := gen == c.gen
		if current && c.link == l {
			close(l.send)
			c.link = nil
		}
		c.mu.Unlock()

		// Only an unexpected drop reports a disconnect here; deliberate
		// teardown already did so.
		if current {
			c.sink(Envelope{Event: EventDisconnect})
		}
	}()

	for {
		var env Envelope
		if err := l.conn.ReadJSON(&env); err != nil {
			return
		}
		c.sink(env)
	}
}

func (l *link) writePump() {
	defer l.conn.Close()

	for env := range l.send {
		if err := l.conn.WriteJSON(env); err != nil {
			return
		}
	}
}

func failure(message string) Envelope {
	data, _ := json.Marshal(errorData{Message: message})
	return Envelope{Event: EventError, Data: data}
}
