package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpstake/stakeboard/adapters/session"
	"github.com/xrpstake/stakeboard/adapters/store"
	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
	"github.com/xrpstake/stakeboard/service"
)

type fakeSignRequests struct {
	created   []core.TxTemplate
	createErr error
	resolved  map[string]core.ResolvedSignRequest
}

func (f *fakeSignRequests) CreateSignIn(ctx context.Context) (core.SignRequest, error) {
	if f.createErr != nil {
		return core.SignRequest{}, f.createErr
	}
	return core.SignRequest{
		ID:                  "req-login",
		ApprovalURL:         "https://approval.example/req-login",
		NotificationChannel: "wss://status.example/req-login",
		Kind:                core.KindLogin,
	}, nil
}

func (f *fakeSignRequests) CreateTransaction(ctx context.Context, kind core.SignRequestKind, tx core.TxTemplate) (core.SignRequest, error) {
	if f.createErr != nil {
		return core.SignRequest{}, f.createErr
	}
	f.created = append(f.created, tx)
	return core.SignRequest{
		ID:                  "req-tx",
		ApprovalURL:         "https://approval.example/req-tx",
		NotificationChannel: "wss://status.example/req-tx",
		Kind:                kind,
	}, nil
}

func (f *fakeSignRequests) Get(ctx context.Context, id string) (core.ResolvedSignRequest, error) {
	resolved, ok := f.resolved[id]
	if !ok {
		return core.ResolvedSignRequest{}, core.ErrRequestNotFound
	}
	return resolved, nil
}

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

type fakeEvents struct{}

func (fakeEvents) PublishLogin(ctx context.Context, address, requestID string) error { return nil }
func (fakeEvents) PublishEscrowChanged(ctx context.Context, address, requestID string, kind core.SignRequestKind) error {
	return nil
}

type fakeStatus struct {
	outcome ports.Outcome
	err     error
}

func (f fakeStatus) Await(ctx context.Context, channelURL string) (ports.Outcome, error) {
	return f.outcome, f.err
}

type testServer struct {
	router   *gin.Engine
	requests *fakeSignRequests
	ledger   *fakeLedger
}

func newTestServer(t *testing.T, opts ...func(*testServer)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		requests: &fakeSignRequests{resolved: map[string]core.ResolvedSignRequest{}},
		ledger:   &fakeLedger{},
	}
	for _, opt := range opts {
		opt(ts)
	}

	sessions := session.NewCookieStore(false)
	coordinator := service.NewHandshakeCoordinator(ts.requests, fakeStatus{outcome: ports.Outcome{Signed: true}}, store.NewMemoryStore(), fakeEvents{}, zerolog.Nop())
	escrows := service.NewEscrowViewBuilder(ts.ledger, zerolog.Nop())
	handlers := NewHandlers(coordinator, escrows, sessions, zerolog.Nop())
	ts.router = SetupRouter(handlers, sessions, zerolog.Nop())

	return ts
}

func (ts *testServer) do(method, target string, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "rAccount123"})
	}

	recorder := httptest.NewRecorder()
	ts.router.ServeHTTP(recorder, req)
	return recorder
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return parsed
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestRouteGuard(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))

	resp = ts.do(http.MethodGet, "/portfolio", "", false)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))

	resp = ts.do(http.MethodGet, "/login", "", true)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))

	resp = ts.do(http.MethodGet, "/login", "", false)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.do(http.MethodGet, "/", "", true)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthCheck(t *testing.T) {
	ts := newTestServer(t)

	body := decode(t, ts.do(http.MethodGet, "/auth/check", "", false))
	assert.Equal(t, false, body["authenticated"])
	assert.NotContains(t, body, "address")

	body = decode(t, ts.do(http.MethodGet, "/auth/check", "", true))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "rAccount123", body["address"])
}

func TestLoginStart(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/auth/login/start", "", false)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode(t, resp)
	assert.Equal(t, "https://approval.example/req-login", body["approvalUrl"])
	assert.Equal(t, "req-login", body["requestId"])
	assert.Equal(t, "wss://status.example/req-login", body["notificationChannel"])
}

func TestLoginStartUpstreamFailure(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.requests.createErr = core.ErrUpstreamUnavailable
	})

	resp := ts.do(http.MethodPost, "/auth/login/start", "", false)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "failed", decode(t, resp)["error"])
}

func TestLoginCallback(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.requests.resolved["req-1"] = core.ResolvedSignRequest{ID: "req-1", Signed: true, Account: "rSigner9"}
	})

	resp := ts.do(http.MethodGet, "/auth/login/callback?requestId=req-1", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["success"])

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, "rSigner9", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginCallbackErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		resolved map[string]core.ResolvedSignRequest
		code     string
	}{
		{
			name:   "missing request id",
			target: "/auth/login/callback",
			code:   "no_payload",
		},
		{
			name:     "unknown request id",
			target:   "/auth/login/callback?requestId=req-gone",
			resolved: map[string]core.ResolvedSignRequest{},
			code:     "no_payload_found",
		},
		{
			name:   "rejected",
			target: "/auth/login/callback?requestId=req-1",
			resolved: map[string]core.ResolvedSignRequest{
				"req-1": {ID: "req-1", Signed: false},
			},
			code: "not_signed",
		},
		{
			name:   "signed without account",
			target: "/auth/login/callback?requestId=req-1",
			resolved: map[string]core.ResolvedSignRequest{
				"req-1": {ID: "req-1", Signed: true},
			},
			code: "no_user_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, func(ts *testServer) {
				if tt.resolved != nil {
					ts.requests.resolved = tt.resolved
				}
			})

			resp := ts.do(http.MethodGet, tt.target, "", false)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, tt.code, decode(t, resp)["error"])
			assert.Empty(t, resp.Result().Cookies(), "failed callback must not set a session cookie")
		})
	}
}

func TestLoginWait(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.requests.resolved["req-w"] = core.ResolvedSignRequest{ID: "req-w", Signed: true, Account: "rWaiter2"}
	})

	resp := ts.do(http.MethodGet, "/auth/login/wait?requestId=req-w&channel=wss%3A%2F%2Fstatus.example%2Freq-w", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["success"])

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "rWaiter2", cookies[0].Value)
}

func TestLoginWaitMissingChannel(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/auth/login/wait?requestId=req-w", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "no_channel", decode(t, resp)["error"])
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/auth/logout", "", true)
	require.Equal(t, http.StatusOK, resp.Code)

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestEscrowCreateScenario(t *testing.T) {
	ts := newTestServer(t)

	before := time.Now().Unix()
	resp := ts.do(http.MethodPost, "/escrow/create", `{"amount":50,"lockupDays":90}`, true)
	after := time.Now().Unix()

	require.Equal(t, http.StatusOK, resp.Code)

	body := decode(t, resp)
	assert.NotEmpty(t, body["approvalUrl"])
	assert.NotEmpty(t, body["requestId"])
	assert.NotEmpty(t, body["notificationChannel"])

	require.Len(t, ts.requests.created, 1)
	tx := ts.requests.created[0]
	assert.Equal(t, "EscrowCreate", tx.TransactionType)
	assert.Equal(t, "rAccount123", tx.Account)
	assert.Equal(t, "rAccount123", tx.Destination)
	assert.Equal(t, "50000000", tx.Amount)
	assert.Equal(t, "12", tx.Fee)
	assert.GreaterOrEqual(t, tx.FinishAfter, before+7776000)
	assert.LessOrEqual(t, tx.FinishAfter, after+7776000)
}

func TestEscrowCreateUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/escrow/create", `{"amount":50,"lockupDays":90}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Unauthenticated", decode(t, resp)["error"])
}

func TestEscrowCreateInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount":0,"lockupDays":90}`},
		{"negative amount", `{"amount":-1,"lockupDays":90}`},
		{"zero lockup", `{"amount":50,"lockupDays":0}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(http.MethodPost, "/escrow/create", tt.body, true)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestEscrowFinish(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/escrow/finish", `{"owner":"rOwner1","sequence":42}`, true)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode(t, resp)
	assert.NotEmpty(t, body["notificationChannel"])

	require.Len(t, ts.requests.created, 1)
	tx := ts.requests.created[0]
	assert.Equal(t, "EscrowFinish", tx.TransactionType)
	assert.Equal(t, "rOwner1", tx.Owner)
	require.NotNil(t, tx.OfferSequence)
	assert.Equal(t, uint32(42), *tx.OfferSequence)
}

func TestEscrowFinishSequenceZero(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/escrow/finish", `{"owner":"rOwner1","sequence":0}`, true)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Len(t, ts.requests.created, 1)
	require.NotNil(t, ts.requests.created[0].OfferSequence)
	assert.Equal(t, uint32(0), *ts.requests.created[0].OfferSequence)
}

func TestEscrowFinishUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/escrow/finish", `{"owner":"rOwner1","sequence":42}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Unauthenticated", decode(t, resp)["error"])
}

func TestEscrowList(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.ledger.records = []core.EscrowRecord{
			{Amount: mustDecimal(t, "50"), Account: "rAccount123", Destination: "rAccount123", FinishAfter: 1710000000, Sequence: 42},
			{Amount: mustDecimal(t, "12.5"), Account: "rAccount123", Destination: "rAccount123", FinishAfter: 1720000000, Sequence: 7},
		}
	})

	resp := ts.do(http.MethodGet, "/escrow/list", "", true)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode(t, resp)
	assert.InDelta(t, 62.5, body["total"].(float64), 1e-9)

	records := body["records"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	assert.InDelta(t, 50.0, first["amount"].(float64), 1e-9)
	assert.Equal(t, float64(42), first["sequence"])
}

func TestEscrowListEmpty(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/escrow/list", "", true)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode(t, resp)
	assert.Zero(t, body["total"].(float64))
	assert.Empty(t, body["records"])
}

func TestEscrowListUpstreamFailure(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.ledger.err = core.ErrUpstreamUnavailable
	})

	resp := ts.do(http.MethodGet, "/escrow/list", "", true)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestEscrowFinalize(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.requests.resolved["req-2"] = core.ResolvedSignRequest{ID: "req-2", Signed: true, Account: "rAccount123"}
	})

	resp := ts.do(http.MethodPost, "/escrow/finalize", `{"requestId":"req-2","kind":"escrow:create"}`, true)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["success"])

	// A duplicate delivery is absorbed, not an error.
	resp = ts.do(http.MethodPost, "/escrow/finalize", `{"requestId":"req-2","kind":"escrow:create"}`, true)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestEscrowFinalizeNotSigned(t *testing.T) {
	ts := newTestServer(t, func(ts *testServer) {
		ts.requests.resolved["req-2"] = core.ResolvedSignRequest{ID: "req-2", Signed: false}
	})

	resp := ts.do(http.MethodPost, "/escrow/finalize", `{"requestId":"req-2","kind":"escrow:finish"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "not_signed", decode(t, resp)["error"])
}
