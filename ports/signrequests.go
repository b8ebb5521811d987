package ports

import (
	"context"

	"github.com/xrpstake/stakeboard/core"
)

// SignRequests wraps creation and lookup of signable requests on the
// wallet-approval service.
type SignRequests interface {
	// CreateSignIn creates a login sign request. The request forces a
	// fresh wallet approval and expires on the service side.
	CreateSignIn(ctx context.Context) (core.SignRequest, error)

	// CreateTransaction creates an auto-submitting sign request for tx:
	// the approval service collects the signature and relays the signed
	// transaction to the ledger itself.
	CreateTransaction(ctx context.Context, kind core.SignRequestKind, tx core.TxTemplate) (core.SignRequest, error)

	// Get fetches the authoritative resolved state of a request.
	Get(ctx context.Context, id string) (core.ResolvedSignRequest, error)
}
