// Package xumm implements the sign-request port against the XUMM
// (Xaman) wallet-approval platform API.
package xumm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

// requestExpiryMinutes is the service-side expiry for every sign
// request. The approval service is the source of truth for expiry; no
// additional timeout is layered on top.
const requestExpiryMinutes = 5

// Config holds the credentials and URLs for the approval service.
type Config struct {
	// BaseURL is the platform API root, e.g. https://xumm.app/api/v1.
	BaseURL string

	APIKey    string
	APISecret string

	// CallbackURL is where the wallet sends the user after a login
	// approval. The {id} placeholder is substituted by the service.
	CallbackURL string
}

// Client talks to the approval service's payload API.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

var _ ports.SignRequests = (*Client)(nil)

// New creates a new approval-service client.
func New(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

type returnURL struct {
	Web string `json:"web"`
	App string `json:"app"`
}

type payloadOptions struct {
	Submit     bool       `json:"submit"`
	Expire     int        `json:"expire"`
	ForceLogin bool       `json:"force_login,omitempty"`
	WebOnly    bool       `json:"web_only,omitempty"`
	ReturnURL  *returnURL `json:"return_url,omitempty"`
}

type createPayloadRequest struct {
	TxJSON  json.RawMessage `json:"txjson"`
	Options payloadOptions  `json:"options"`
}

type createPayloadResponse struct {
	UUID string `json:"uuid"`
	Next struct {
		Always string `json:"always"`
	} `json:"next"`
	Refs struct {
		WebsocketStatus string `json:"websocket_status"`
	} `json:"refs"`
}

type getPayloadResponse struct {
	Meta struct {
		Signed  bool `json:"signed"`
		Expired bool `json:"expired"`
	} `json:"meta"`
	Response struct {
		Account string `json:"account"`
		TxID    string `json:"txid"`
	} `json:"response"`
}

// CreateSignIn creates a login sign request. The request forces a fresh
// wallet approval regardless of any cached wallet session and never
// auto-submits (a SignIn carries no transaction).
func (c *Client) CreateSignIn(ctx context.Context) (core.SignRequest, error) {
	body := createPayloadRequest{
		TxJSON: json.RawMessage(`{"TransactionType":"SignIn"}`),
		Options: payloadOptions{
			Submit:     false,
			Expire:     requestExpiryMinutes,
			ForceLogin: true,
			WebOnly:    true,
			ReturnURL: &returnURL{
				Web: c.cfg.CallbackURL,
				App: c.cfg.CallbackURL,
			},
		},
	}

	return c.create(ctx, body, core.KindLogin)
}

// CreateTransaction creates an auto-submitting sign request for tx.
func (c *Client) CreateTransaction(ctx context.Context, kind core.SignRequestKind, tx core.TxTemplate) (core.SignRequest, error) {
	txJSON, err := json.Marshal(tx)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("marshal transaction template: %w", err)
	}

	body := createPayloadRequest{
		TxJSON: txJSON,
		Options: payloadOptions{
			Submit: true,
			Expire: requestExpiryMinutes,
		},
	}

	return c.create(ctx, body, kind)
}

func (c *Client) create(ctx context.Context, body createPayloadRequest, kind core.SignRequestKind) (core.SignRequest, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("marshal payload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/platform/payload", bytes.NewReader(payload))
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("build payload request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.SignRequest{}, fmt.Errorf("approval service unreachable: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.SignRequest{}, fmt.Errorf("approval service returned %s: %w", resp.Status, core.ErrUpstreamUnavailable)
	}

	var created createPayloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return core.SignRequest{}, fmt.Errorf("decode payload response: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if created.UUID == "" {
		return core.SignRequest{}, fmt.Errorf("payload response missing uuid: %w", core.ErrUpstreamUnavailable)
	}

	c.log.Debug().Str("request_id", created.UUID).Str("kind", string(kind)).Msg("sign request created")

	return core.SignRequest{
		ID:                  created.UUID,
		ApprovalURL:         created.Next.Always,
		NotificationChannel: created.Refs.WebsocketStatus,
		Kind:                kind,
	}, nil
}

// Get fetches the authoritative resolved state of a sign request.
func (c *Client) Get(ctx context.Context, id string) (core.ResolvedSignRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/platform/payload/"+id, nil)
	if err != nil {
		return core.ResolvedSignRequest{}, fmt.Errorf("build payload lookup: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.ResolvedSignRequest{}, fmt.Errorf("approval service unreachable: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return core.ResolvedSignRequest{}, core.ErrRequestNotFound
	case resp.StatusCode != http.StatusOK:
		return core.ResolvedSignRequest{}, fmt.Errorf("approval service returned %s: %w", resp.Status, core.ErrUpstreamUnavailable)
	}

	var payload getPayloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return core.ResolvedSignRequest{}, fmt.Errorf("decode payload lookup: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	return core.ResolvedSignRequest{
		ID:      id,
		Signed:  payload.Meta.Signed,
		Expired: payload.Meta.Expired,
		Account: strings.TrimSpace(payload.Response.Account),
		TxID:    payload.Response.TxID,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("X-API-Secret", c.cfg.APISecret)
}
