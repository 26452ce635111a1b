package fanout

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second
)

// Client watches one match on a fanout server and republishes received
// events onto a local in-process bus.
type Client struct {
	addr    string
	matchID string
	bus     *events.Bus
	msgpack bool
}

func NewClient(addr, matchID string, bus *events.Bus) *Client {
	return &Client{
		addr:    addr,
		matchID: matchID,
		bus:     bus,
	}
}

// WithMsgpack asks the server for binary snapshot frames.
func (c *Client) WithMsgpack() *Client {
	c.msgpack = true
	return c
}

// ConnectWithRetry connects to the fanout server and reconnects on failure
// with exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		backoff := backoffFor(attempt)

		if err != nil {
			telemetry.Warnf("fanout: connection lost (attempt %d): %v, retrying in %s", attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func backoffFor(attempt int) time.Duration {
	backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

func (c *Client) connect(ctx context.Context) error {
	q := url.Values{"match": {c.matchID}}
	if c.msgpack {
		q.Set("codec", CodecMsgpack)
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     c.addr,
		Path:     "/ws",
		RawQuery: q.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	// Unblock ReadMessage when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	telemetry.Infof("fanout: watching match %s on %s", c.matchID, c.addr)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var evt events.Event
		if kind == websocket.BinaryMessage {
			evt, err = UnmarshalSnapshotFrame(msg)
		} else {
			evt, err = UnmarshalEvent(msg)
		}
		if err != nil {
			telemetry.Warnf("fanout: unmarshal error: %v", err)
			continue
		}

		c.bus.Publish(evt)
	}
}
