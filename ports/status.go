package ports

import "context"

// Outcome is the terminal signal read from a notification channel. It
// is a wake-up only: finalize always re-fetches authoritative state
// from the approval service.
type Outcome struct {
	Signed bool
}

// StatusChannel subscribes to a sign request's notification channel.
type StatusChannel interface {
	// Await blocks until the channel reports a terminal state or ctx is
	// cancelled, whichever comes first. The subscription is fully torn
	// down before Await returns.
	Await(ctx context.Context, channelURL string) (Outcome, error)
}
