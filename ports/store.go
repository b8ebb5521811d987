package ports

import (
	"context"
	"time"
)

// ConsumptionStore records the first finalize outcome per sign request.
// A duplicate delivery replays the recorded outcome instead of producing
// a second effect, which is what makes finalize idempotent.
type ConsumptionStore interface {
	// Consume records outcome for requestID unless one is already
	// recorded. It returns the recorded outcome and whether the request
	// had already been consumed before this call.
	Consume(ctx context.Context, requestID, outcome string, ttl time.Duration) (recorded string, already bool, err error)
}
