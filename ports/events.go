package ports

import (
	"context"

	"github.com/xrpstake/stakeboard/core"
)

// EventPublisher notifies other instances about completed handshake
// flows. Publishing is best-effort; a failed publish never fails the
// flow itself.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, requestID string) error
	PublishEscrowChanged(ctx context.Context, address, requestID string, kind core.SignRequestKind) error
}
