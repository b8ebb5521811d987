package ports

import (
	"context"

	"github.com/xrpstake/stakeboard/core"
)

// Ledger wraps read access to the remote ledger network. Implementations
// acquire and release their connection per call; a Ledger value carries
// no shared connection state.
type Ledger interface {
	// AccountEscrows returns the escrow objects owned by address, in the
	// ledger's native return order. An account with no escrows yields an
	// empty slice, not an error.
	AccountEscrows(ctx context.Context, address string) ([]core.EscrowRecord, error)
}
