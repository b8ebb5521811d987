// Package statusws implements the status-channel port against the
// approval service's per-request websocket.
package statusws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

// statusFrame is one notification-channel message. Providers differ on
// nesting, so both the flat and the nested terminal flags are accepted.
// A frame without any terminal flag is a keepalive and is skipped.
type statusFrame struct {
	Signed   *bool `json:"signed"`
	Rejected bool  `json:"rejected"`
	Expired  bool  `json:"expired"`
	Payload  *struct {
		Meta struct {
			Signed bool `json:"signed"`
		} `json:"meta"`
	} `json:"payload"`
}

// Channel subscribes to notification channels over websocket. Each
// Await call owns its connection and closes it before returning, on
// terminal message and cancellation alike.
type Channel struct {
	dialer *websocket.Dialer
	log    zerolog.Logger
}

var _ ports.StatusChannel = (*Channel)(nil)

// NewChannel creates a new channel subscriber.
func NewChannel(log zerolog.Logger) *Channel {
	return &Channel{
		dialer: websocket.DefaultDialer,
		log:    log,
	}
}

// Await blocks until the channel reports a terminal state or ctx is
// cancelled, whichever comes first.
func (c *Channel) Await(ctx context.Context, channelURL string) (ports.Outcome, error) {
	conn, _, err := c.dialer.DialContext(ctx, channelURL, nil)
	if err != nil {
		return ports.Outcome{}, fmt.Errorf("dial notification channel: %v: %w", err, core.ErrChannelClosed)
	}
	defer conn.Close()

	// Cancellation must unblock the read loop; closing the connection
	// is the only way to interrupt a pending read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var frame statusFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ports.Outcome{}, ctx.Err()
			}
			return ports.Outcome{}, fmt.Errorf("read notification channel: %v: %w", err, core.ErrChannelClosed)
		}

		switch {
		case frame.Signed != nil:
			c.log.Debug().Bool("signed", *frame.Signed).Msg("notification channel reported terminal state")
			return ports.Outcome{Signed: *frame.Signed}, nil
		case frame.Payload != nil && frame.Payload.Meta.Signed:
			return ports.Outcome{Signed: true}, nil
		case frame.Rejected || frame.Expired:
			return ports.Outcome{Signed: false}, nil
		}
	}
}
