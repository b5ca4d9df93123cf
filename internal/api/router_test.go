package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ayo6706/txledger/internal/api/handler"
	"github.com/ayo6706/txledger/internal/api/middleware"
	"github.com/ayo6706/txledger/internal/api/problem"
	"github.com/ayo6706/txledger/internal/config"
	"github.com/ayo6706/txledger/internal/idempotency"
	"github.com/ayo6706/txledger/internal/observability"
	"github.com/ayo6706/txledger/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleInput = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`

const testSecret = "0123456789abcdef0123456789abcdef"

type routerOptions struct {
	maxUpload int64
	redis     *redis.Client
	auth      *middleware.JWTAuth
}

func newTestServer(t *testing.T, opts routerOptions) *httptest.Server {
	t.Helper()
	observability.Init()

	cfg := &config.Config{
		RateLimitRPS:    1000,
		MaxUploadBytes:  1 << 20,
		OutputPrecision: 4,
	}
	if opts.maxUpload > 0 {
		cfg.MaxUploadBytes = opts.maxUpload
	}

	var store *idempotency.Store
	var cmd redis.Cmdable
	if opts.redis != nil {
		store = idempotency.NewStore(opts.redis, time.Hour)
		cmd = opts.redis
	}

	logger := zap.NewNop()
	router := NewRouter(cfg, logger, service.NewBatchService(logger), store, cmd, opts.auth)
	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func postReplay(t *testing.T, srv *httptest.Server, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/replays", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeProblem(t *testing.T, resp *http.Response) problem.Details {
	t.Helper()
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	var details problem.Details
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&details))
	return details
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, routerOptions{})

	resp, err := srv.Client().Get(srv.URL + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", readBody(t, resp))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	ready, err := srv.Client().Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	defer ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}

func TestReadyReportsRedisOutage(t *testing.T) {
	client, mr := newRedis(t)
	srv := newTestServer(t, routerOptions{redis: client})
	mr.Close()

	resp, err := srv.Client().Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	details := decodeProblem(t, resp)
	assert.Equal(t, problem.Type("health/redis-unavailable"), details.Type)
}

func TestReplayReturnsJSONAccounts(t *testing.T) {
	srv := newTestServer(t, routerOptions{})

	resp := postReplay(t, srv, sampleInput, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", resp.Header.Get("X-Operations-Applied"))
	assert.Equal(t, "1", resp.Header.Get("X-Operations-Rejected"))

	var body handler.ReplayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, service.Summary{Applied: 4, Rejected: 1, Accounts: 2}, body.Summary)
	require.Len(t, body.Accounts, 2)

	assert.Equal(t, uint16(1), body.Accounts[0].Client)
	assert.Equal(t, "1.5000", body.Accounts[0].Available)
	assert.Equal(t, "0.0000", body.Accounts[0].Held)
	assert.Equal(t, "1.5000", body.Accounts[0].Total)
	assert.False(t, body.Accounts[0].Locked)

	assert.Equal(t, uint16(2), body.Accounts[1].Client)
	assert.Equal(t, "2.0000", body.Accounts[1].Total)
}

func TestReplayReturnsCSVWhenAsked(t *testing.T) {
	srv := newTestServer(t, routerOptions{})

	resp := postReplay(t, srv, sampleInput, map[string]string{"Accept": "text/csv"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,1.5000,0.0000,1.5000,false\n"+
			"2,2.0000,0.0000,2.0000,false\n",
		readBody(t, resp),
	)
}

func TestReplayChargebackLocksAccount(t *testing.T) {
	srv := newTestServer(t, routerOptions{})
	input := "type,client,tx,amount\n" +
		"deposit,1,1,100\n" +
		"dispute,1,1\n" +
		"chargeback,1,1\n" +
		"deposit,1,2,5\n"

	resp := postReplay(t, srv, input, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handler.ReplayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "0.0000", body.Accounts[0].Total)
	assert.True(t, body.Accounts[0].Locked)
	assert.Equal(t, 1, body.Summary.Rejected)
}

func TestReplayRejectsMalformedInput(t *testing.T) {
	srv := newTestServer(t, routerOptions{})

	resp := postReplay(t, srv, "type,client,tx,amount\ndeposit,abc,1,1.0\n", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details := decodeProblem(t, resp)
	assert.Equal(t, problem.Type("replay/invalid-input"), details.Type)
	assert.Contains(t, details.Detail, "line 2")
	assert.Equal(t, "/v1/replays", details.Instance)
}

func TestReplayRejectsOversizedUpload(t *testing.T) {
	srv := newTestServer(t, routerOptions{maxUpload: 16})

	resp := postReplay(t, srv, sampleInput, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	details := decodeProblem(t, resp)
	assert.Equal(t, problem.Type("request/too-large"), details.Type)
}

func TestReplayRequiresBearerTokenWhenAuthEnabled(t *testing.T) {
	auth := middleware.NewJWTAuth(testSecret, "txledger", "txledger-api")
	srv := newTestServer(t, routerOptions{auth: auth})

	resp := postReplay(t, srv, sampleInput, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := auth.Sign(jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "user-1")
	require.NoError(t, err)

	ok := postReplay(t, srv, sampleInput, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestReplayIdempotencyKeyReplaysResponse(t *testing.T) {
	client, _ := newRedis(t)
	srv := newTestServer(t, routerOptions{redis: client})
	headers := map[string]string{"Idempotency-Key": "replay-1"}

	first := postReplay(t, srv, sampleInput, headers)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Empty(t, first.Header.Get("X-Idempotent-Replay"))
	firstBody := readBody(t, first)

	second := postReplay(t, srv, sampleInput, headers)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "redis", second.Header.Get("X-Idempotent-Replay"))
	assert.Equal(t, firstBody, readBody(t, second))

	conflict := postReplay(t, srv, "type,client,tx,amount\ndeposit,9,9,9\n", headers)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)
	details := decodeProblem(t, conflict)
	assert.Equal(t, problem.Type("idempotency/key-conflict"), details.Type)
}

func TestDocsAndMetricsAreServed(t *testing.T) {
	srv := newTestServer(t, routerOptions{})
	postReplay(t, srv, sampleInput, nil)

	doc, err := srv.Client().Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer doc.Body.Close()
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Contains(t, readBody(t, doc), "/v1/replays")

	ui, err := srv.Client().Get(srv.URL + "/swagger/index.html")
	require.NoError(t, err)
	defer ui.Body.Close()
	assert.Equal(t, http.StatusOK, ui.StatusCode)

	metrics, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	body := readBody(t, metrics)
	assert.Contains(t, body, "ledger_operations_total")
	assert.Contains(t, body, `path="/v1/replays"`)
}
