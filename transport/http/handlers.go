package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
	"github.com/xrpstake/stakeboard/service"
)

// Handlers contains the HTTP handlers for the auth and escrow endpoints.
type Handlers struct {
	coordinator *service.HandshakeCoordinator
	escrows     *service.EscrowViewBuilder
	sessions    ports.SessionStore
	log         zerolog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(coordinator *service.HandshakeCoordinator, escrows *service.EscrowViewBuilder, sessions ports.SessionStore, log zerolog.Logger) *Handlers {
	return &Handlers{
		coordinator: coordinator,
		escrows:     escrows,
		sessions:    sessions,
		log:         log,
	}
}

func signRequestResponse(req core.SignRequest) gin.H {
	return gin.H{
		"approvalUrl":         req.ApprovalURL,
		"requestId":           req.ID,
		"notificationChannel": req.NotificationChannel,
	}
}

// AuthCheck reports whether the request carries a session.
func (h *Handlers) AuthCheck(c *gin.Context) {
	session, ok := h.sessions.Get(c.Request)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"address":       session.Address,
	})
}

// LoginStart creates a login sign request.
func (h *Handlers) LoginStart(c *gin.Context) {
	req, err := h.coordinator.BeginLogin(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("login start failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}

	c.JSON(http.StatusOK, signRequestResponse(req))
}

// LoginCallback finalizes a login request and sets the session cookie.
// The wallet sends the user here after approving; the resolved state is
// always re-fetched from the approval service, never taken from the
// caller.
func (h *Handlers) LoginCallback(c *gin.Context) {
	requestID := c.Query("requestId")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_payload"})
		return
	}

	h.finalizeLogin(c, requestID)
}

// LoginWait is a long-poll alternative to the callback for clients that
// cannot open the approval popup's return flow. It blocks on the
// request's notification channel and finalizes once a terminal state is
// reported. Closing the connection cancels the subscription.
func (h *Handlers) LoginWait(c *gin.Context) {
	requestID := c.Query("requestId")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_payload"})
		return
	}
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_channel"})
		return
	}

	outcome, err := h.coordinator.AwaitResolution(c.Request.Context(), channel)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing left to answer.
			c.Abort()
			return
		}
		h.log.Warn().Err(err).Str("request_id", requestID).Msg("notification channel failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel_error"})
		return
	}
	if !outcome.Signed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not_signed"})
		return
	}

	h.finalizeLogin(c, requestID)
}

func (h *Handlers) finalizeLogin(c *gin.Context, requestID string) {
	session, err := h.coordinator.FinalizeLogin(c.Request.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrRequestNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_payload_found"})
		case errors.Is(err, core.ErrNoAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_user_token"})
		case errors.Is(err, core.ErrNotSigned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "not_signed"})
		default:
			h.log.Error().Err(err).Str("request_id", requestID).Msg("login finalize failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		}
		return
	}

	h.sessions.Set(c.Writer, session)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie. It succeeds even without one.
func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{})
}

// EscrowCreate creates an escrow-creation sign request.
func (h *Handlers) EscrowCreate(c *gin.Context) {
	var req struct {
		Amount     float64 `json:"amount" binding:"required,gt=0"`
		LockupDays int     `json:"lockupDays" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	sign, err := h.coordinator.BeginEscrowCreate(c.Request.Context(), sessionFrom(c), decimal.NewFromFloat(req.Amount), req.LockupDays)
	if err != nil {
		h.respondBeginError(c, err)
		return
	}

	c.JSON(http.StatusOK, signRequestResponse(sign))
}

// EscrowList returns the account's escrow records and total.
func (h *Handlers) EscrowList(c *gin.Context) {
	session := sessionFrom(c)

	total, records, err := h.escrows.ListEscrows(c.Request.Context(), session.Address)
	if err != nil {
		h.log.Error().Err(err).Str("account", session.Address).Msg("escrow list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}

	type escrowRecord struct {
		Amount      float64 `json:"amount"`
		Account     string  `json:"account"`
		Destination string  `json:"destination"`
		FinishAfter int64   `json:"finishAfter"`
		Sequence    uint32  `json:"sequence"`
	}

	out := make([]escrowRecord, 0, len(records))
	for _, record := range records {
		out = append(out, escrowRecord{
			Amount:      record.Amount.InexactFloat64(),
			Account:     record.Account,
			Destination: record.Destination,
			FinishAfter: record.FinishAfter,
			Sequence:    record.Sequence,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   total.InexactFloat64(),
		"records": out,
	})
}

// EscrowFinish creates an escrow-release sign request for the escrow
// identified by (owner, sequence).
func (h *Handlers) EscrowFinish(c *gin.Context) {
	var req struct {
		Owner    string  `json:"owner" binding:"required"`
		Sequence *uint32 `json:"sequence" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	sign, err := h.coordinator.BeginEscrowFinish(c.Request.Context(), sessionFrom(c), req.Owner, *req.Sequence)
	if err != nil {
		h.respondBeginError(c, err)
		return
	}

	c.JSON(http.StatusOK, signRequestResponse(sign))
}

// EscrowFinalize closes out a resolved escrow request. The transaction
// was already relayed at creation time; this only records consumption
// and triggers the view refresh notification.
func (h *Handlers) EscrowFinalize(c *gin.Context) {
	var req struct {
		RequestID string `json:"requestId" binding:"required"`
		Kind      string `json:"kind" binding:"required,oneof=escrow:create escrow:finish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.coordinator.FinalizeEscrow(c.Request.Context(), req.RequestID, core.SignRequestKind(req.Kind))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrRequestNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_payload_found"})
		case errors.Is(err, core.ErrNotSigned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "not_signed"})
		default:
			h.log.Error().Err(err).Str("request_id", req.RequestID).Msg("escrow finalize failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) respondBeginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidLockup):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	default:
		h.log.Error().Err(err).Msg("sign request creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
	}
}
