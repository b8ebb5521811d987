// Package xrpl implements the ledger port against an XRP Ledger node's
// websocket JSON-RPC API.
package xrpl

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

// Gateway issues one-shot queries against the ledger node. Each call
// dials its own connection and closes it before returning; concurrent
// calls never share a connection handle.
type Gateway struct {
	nodeURL string
	dialer  *websocket.Dialer
	log     zerolog.Logger
}

var _ ports.Ledger = (*Gateway)(nil)

// NewGateway creates a gateway for the given wss node URL.
func NewGateway(nodeURL string, log zerolog.Logger) *Gateway {
	return &Gateway{
		nodeURL: nodeURL,
		dialer:  websocket.DefaultDialer,
		log:     log,
	}
}

type accountObjectsRequest struct {
	Command string `json:"command"`
	Account string `json:"account"`
	Type    string `json:"type"`
}

type escrowObject struct {
	Amount      string `json:"Amount"`
	Account     string `json:"Account"`
	Destination string `json:"Destination"`
	FinishAfter int64  `json:"FinishAfter"`
	Sequence    uint32 `json:"Sequence"`
}

type accountObjectsResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Result struct {
		AccountObjects []escrowObject `json:"account_objects"`
	} `json:"result"`
}

// AccountEscrows queries the node for the escrow objects owned by
// address. An unknown account yields an empty result, matching the
// "no escrows yet" display state.
func (g *Gateway) AccountEscrows(ctx context.Context, address string) ([]core.EscrowRecord, error) {
	conn, _, err := g.dialer.DialContext(ctx, g.nodeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ledger node: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	request := accountObjectsRequest{
		Command: "account_objects",
		Account: address,
		Type:    "escrow",
	}
	if err := conn.WriteJSON(request); err != nil {
		return nil, fmt.Errorf("send account_objects: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	var response accountObjectsResponse
	if err := conn.ReadJSON(&response); err != nil {
		return nil, fmt.Errorf("read account_objects response: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	if response.Status != "success" {
		if response.Error == "actNotFound" {
			return []core.EscrowRecord{}, nil
		}
		return nil, fmt.Errorf("ledger query failed: %s: %w", response.Error, core.ErrUpstreamUnavailable)
	}

	records := make([]core.EscrowRecord, 0, len(response.Result.AccountObjects))
	for _, object := range response.Result.AccountObjects {
		amount, err := core.DropsToXRP(object.Amount)
		if err != nil {
			return nil, fmt.Errorf("escrow object for %s: %w", object.Account, err)
		}
		records = append(records, core.EscrowRecord{
			Amount:      amount,
			Account:     object.Account,
			Destination: object.Destination,
			FinishAfter: object.FinishAfter,
			Sequence:    object.Sequence,
		})
	}

	g.log.Debug().Str("account", address).Int("escrows", len(records)).Msg("account_objects query complete")
	return records, nil
}
