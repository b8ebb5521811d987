package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

const (
	// escrowFee is the flat transaction fee in drops for both escrow
	// transaction types.
	escrowFee = "12"

	secondsPerDay = 86400
)

// HandshakeCoordinator drives the create → await → finalize flow for
// login, escrow-create and escrow-finish sign requests.
type HandshakeCoordinator struct {
	requests ports.SignRequests
	status   ports.StatusChannel
	consumed ports.ConsumptionStore
	events   ports.EventPublisher
	log      zerolog.Logger

	sessionTTL     time.Duration
	consumptionTTL time.Duration

	now func() time.Time
}

// NewHandshakeCoordinator creates a new coordinator.
func NewHandshakeCoordinator(
	requests ports.SignRequests,
	status ports.StatusChannel,
	consumed ports.ConsumptionStore,
	events ports.EventPublisher,
	log zerolog.Logger,
) *HandshakeCoordinator {
	return &HandshakeCoordinator{
		requests:       requests,
		status:         status,
		consumed:       consumed,
		events:         events,
		log:            log,
		sessionTTL:     7 * 24 * time.Hour,
		consumptionTTL: 24 * time.Hour,
		now:            time.Now,
	}
}

// BeginLogin creates a login sign request on the approval service.
func (h *HandshakeCoordinator) BeginLogin(ctx context.Context) (core.SignRequest, error) {
	req, err := h.requests.CreateSignIn(ctx)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("create sign-in request: %w", err)
	}

	h.log.Info().Str("request_id", req.ID).Str("kind", string(req.Kind)).Msg("login sign request created")
	return req, nil
}

// BeginEscrowCreate builds an escrow-creation transaction for the
// session's account and submits it as an auto-submitting sign request.
// The amount is converted to drops with floor rounding; the unlock time
// is an absolute unix timestamp lockupDays days from now.
func (h *HandshakeCoordinator) BeginEscrowCreate(ctx context.Context, session *core.Session, amount decimal.Decimal, lockupDays int) (core.SignRequest, error) {
	if session == nil {
		return core.SignRequest{}, core.ErrUnauthenticated
	}
	if !amount.IsPositive() {
		return core.SignRequest{}, core.ErrInvalidAmount
	}
	if lockupDays < 1 {
		return core.SignRequest{}, core.ErrInvalidLockup
	}

	tx := core.TxTemplate{
		TransactionType: "EscrowCreate",
		Account:         session.Address,
		Destination:     session.Address,
		Amount:          core.XRPToDrops(amount),
		FinishAfter:     h.now().Unix() + int64(lockupDays)*secondsPerDay,
		Fee:             escrowFee,
	}

	req, err := h.requests.CreateTransaction(ctx, core.KindEscrowCreate, tx)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("create escrow-create request: %w", err)
	}

	h.log.Info().
		Str("request_id", req.ID).
		Str("account", session.Address).
		Str("amount_drops", tx.Amount).
		Int64("finish_after", tx.FinishAfter).
		Msg("escrow-create sign request created")
	return req, nil
}

// BeginEscrowFinish builds an escrow-release transaction referencing
// the escrow's identifying (owner, sequence) pair and submits it as an
// auto-submitting sign request.
func (h *HandshakeCoordinator) BeginEscrowFinish(ctx context.Context, session *core.Session, owner string, sequence uint32) (core.SignRequest, error) {
	if session == nil {
		return core.SignRequest{}, core.ErrUnauthenticated
	}

	seq := sequence
	tx := core.TxTemplate{
		TransactionType: "EscrowFinish",
		Account:         session.Address,
		Owner:           owner,
		OfferSequence:   &seq,
		Fee:             escrowFee,
	}

	req, err := h.requests.CreateTransaction(ctx, core.KindEscrowFinish, tx)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("create escrow-finish request: %w", err)
	}

	h.log.Info().
		Str("request_id", req.ID).
		Str("owner", owner).
		Uint32("sequence", sequence).
		Msg("escrow-finish sign request created")
	return req, nil
}

// AwaitResolution blocks on the request's notification channel until it
// reports a terminal state or ctx is cancelled. The outcome is a
// wake-up signal only; callers must still finalize against the
// re-fetched authoritative state.
func (h *HandshakeCoordinator) AwaitResolution(ctx context.Context, channelURL string) (ports.Outcome, error) {
	outcome, err := h.status.Await(ctx, channelURL)
	if err != nil {
		return ports.Outcome{}, fmt.Errorf("await resolution: %w", err)
	}
	return outcome, nil
}

// FinalizeLogin re-fetches the resolved request and, if signed, builds
// the session for its account. The first finalize per request id wins;
// a duplicate delivery replays the recorded account instead of minting
// a second session.
func (h *HandshakeCoordinator) FinalizeLogin(ctx context.Context, requestID string) (*core.Session, error) {
	resolved, err := h.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !resolved.Signed {
		return nil, core.ErrNotSigned
	}
	if resolved.Account == "" {
		return nil, core.ErrNoAccount
	}

	address, already, err := h.consumed.Consume(ctx, requestID, resolved.Account, h.consumptionTTL)
	if err != nil {
		return nil, fmt.Errorf("record request consumption: %w", err)
	}

	session := &core.Session{
		Address:  address,
		IssuedAt: h.now(),
		TTL:      h.sessionTTL,
	}

	if already {
		h.log.Debug().Str("request_id", requestID).Msg("duplicate login finalize, replaying recorded outcome")
		return session, nil
	}

	if err := h.events.PublishLogin(ctx, address, requestID); err != nil {
		h.log.Warn().Err(err).Str("request_id", requestID).Msg("login event publish failed")
	}

	h.log.Info().Str("request_id", requestID).Str("account", address).Msg("login finalized")
	return session, nil
}

// FinalizeEscrow closes out an escrow-create or escrow-finish request.
// The transaction was already relayed to the ledger at creation time,
// so the only effect here is the change notification. Duplicate
// deliveries are absorbed the same way as for login.
func (h *HandshakeCoordinator) FinalizeEscrow(ctx context.Context, requestID string, kind core.SignRequestKind) error {
	resolved, err := h.requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if !resolved.Signed {
		return core.ErrNotSigned
	}

	address, already, err := h.consumed.Consume(ctx, requestID, resolved.Account, h.consumptionTTL)
	if err != nil {
		return fmt.Errorf("record request consumption: %w", err)
	}
	if already {
		h.log.Debug().Str("request_id", requestID).Msg("duplicate escrow finalize, ignoring")
		return nil
	}

	if err := h.events.PublishEscrowChanged(ctx, address, requestID, kind); err != nil {
		h.log.Warn().Err(err).Str("request_id", requestID).Msg("escrow change event publish failed")
	}

	h.log.Info().Str("request_id", requestID).Str("kind", string(kind)).Msg("escrow request finalized")
	return nil
}
