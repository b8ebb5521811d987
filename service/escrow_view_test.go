package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpstake/stakeboard/core"
)

type fakeLedger struct {
	records []core.EscrowRecord
	err     error
}

func (f *fakeLedger) AccountEscrows(ctx context.Context, address string) ([]core.EscrowRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestListEscrowsEmpty(t *testing.T) {
	builder := NewEscrowViewBuilder(&fakeLedger{records: []core.EscrowRecord{}}, zerolog.Nop())

	total, records, err := builder.ListEscrows(context.Background(), "rAccount123")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Empty(t, records)
}

func TestListEscrowsTotal(t *testing.T) {
	ledger := &fakeLedger{records: []core.EscrowRecord{
		{Amount: decimal.RequireFromString("12.5"), Account: "rAccount123", Sequence: 7},
		{Amount: decimal.RequireFromString("0.000001"), Account: "rAccount123", Sequence: 3},
		{Amount: decimal.RequireFromString("100"), Account: "rAccount123", Sequence: 11},
	}}
	builder := NewEscrowViewBuilder(ledger, zerolog.Nop())

	total, records, err := builder.ListEscrows(context.Background(), "rAccount123")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("112.500001")), "got total %s", total)

	// Ledger-native order must be preserved, not sorted.
	require.Len(t, records, 3)
	assert.Equal(t, uint32(7), records[0].Sequence)
	assert.Equal(t, uint32(3), records[1].Sequence)
	assert.Equal(t, uint32(11), records[2].Sequence)
}

func TestListEscrowsUpstreamFailure(t *testing.T) {
	builder := NewEscrowViewBuilder(&fakeLedger{err: core.ErrUpstreamUnavailable}, zerolog.Nop())

	_, _, err := builder.ListEscrows(context.Background(), "rAccount123")
	assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
}
