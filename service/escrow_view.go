package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

// EscrowViewBuilder aggregates a user's ledger escrow objects for
// display and as the selector source for finish requests.
type EscrowViewBuilder struct {
	ledger ports.Ledger
	log    zerolog.Logger
}

// NewEscrowViewBuilder creates a new view builder.
func NewEscrowViewBuilder(ledger ports.Ledger, log zerolog.Logger) *EscrowViewBuilder {
	return &EscrowViewBuilder{ledger: ledger, log: log}
}

// ListEscrows returns the account's escrow records in the ledger's
// native return order, plus the total locked amount in display units.
// Callers must not assume the records are sorted by any field.
func (b *EscrowViewBuilder) ListEscrows(ctx context.Context, address string) (decimal.Decimal, []core.EscrowRecord, error) {
	records, err := b.ledger.AccountEscrows(ctx, address)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("query account escrows: %w", err)
	}

	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Amount)
	}

	b.log.Debug().Str("account", address).Int("escrows", len(records)).Msg("escrow view built")
	return total, records, nil
}
