package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignRequestKind distinguishes the three handshake flows. The kind is
// fixed at creation time and decides which finalize side effect applies.
type SignRequestKind string

const (
	KindLogin        SignRequestKind = "login"
	KindEscrowCreate SignRequestKind = "escrow:create"
	KindEscrowFinish SignRequestKind = "escrow:finish"
)

// SignRequest is a pending approval created on the wallet-approval
// service. The approval URL is opened by the user; the notification
// channel reports when the request reaches a terminal state.
type SignRequest struct {
	ID                  string
	ApprovalURL         string
	NotificationChannel string
	Kind                SignRequestKind
}

// ResolvedSignRequest is the authoritative state of a sign request as
// reported by the wallet-approval service. The account is only present
// on signed requests and is the sole source of account identifiers in
// the system.
type ResolvedSignRequest struct {
	ID      string
	Signed  bool
	Expired bool
	Account string
	TxID    string
}

// EscrowRecord is a read-only projection of a ledger escrow object.
// The ledger identifies an escrow by (Account, Sequence); there is no
// separate ID.
type EscrowRecord struct {
	Amount      decimal.Decimal
	Account     string
	Destination string
	FinishAfter int64
	Sequence    uint32
}

// Session represents an authenticated user session backed by the
// session cookie.
type Session struct {
	Address  string
	IssuedAt time.Time
	TTL      time.Duration
}

// ExpiresAt returns when the session stops being valid.
func (s *Session) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.TTL)
}

// TxTemplate is the transaction JSON handed to the wallet-approval
// service for signing. Field names follow the ledger's canonical
// transaction format.
type TxTemplate struct {
	TransactionType string  `json:"TransactionType"`
	Account         string  `json:"Account"`
	Destination     string  `json:"Destination,omitempty"`
	Amount          string  `json:"Amount,omitempty"`
	FinishAfter     int64   `json:"FinishAfter,omitempty"`
	Owner           string  `json:"Owner,omitempty"`
	OfferSequence   *uint32 `json:"OfferSequence,omitempty"`
	Fee             string  `json:"Fee"`
}
