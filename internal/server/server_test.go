package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainwatch/internal/report"
	"rainwatch/internal/types"
)

type stubScanner struct {
	summary types.ScanSummary
	err     error
	calls   int
}

func (s *stubScanner) RunScan(context.Context) (types.ScanSummary, error) {
	s.calls++
	return s.summary, s.err
}

type stubBroadcast struct {
	summary report.BroadcastSummary
	err     error
	calls   int
}

func (s *stubBroadcast) Run(context.Context) (report.BroadcastSummary, error) {
	s.calls++
	return s.summary, s.err
}

func newTestServer(scanner *stubScanner, broadcast *stubBroadcast) *Server {
	return New(scanner, broadcast, types.SecretString("cron-secret"), types.NewLogger(nil))
}

func doRequest(t *testing.T, srv *Server, method, path, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if secret != "" {
		req.Header.Set("X-Cron-Secret", secret)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubScanner{}, &stubBroadcast{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCronRainAlerts_RequiresSecret(t *testing.T) {
	scanner := &stubScanner{}
	srv := newTestServer(scanner, &stubBroadcast{})

	rec := doRequest(t, srv, http.MethodPost, "/cron/rain-alerts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/cron/rain-alerts", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, 0, scanner.calls)
}

func TestCronRainAlerts_RunsScan(t *testing.T) {
	scanner := &stubScanner{summary: types.ScanSummary{RunID: "r1", Sent: 2, Skipped: 5}}
	srv := newTestServer(scanner, &stubBroadcast{})

	rec := doRequest(t, srv, http.MethodPost, "/cron/rain-alerts", "cron-secret")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, scanner.calls)

	var got types.ScanSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Sent)
}

func TestCronRainAlerts_BearerTokenAccepted(t *testing.T) {
	scanner := &stubScanner{}
	srv := newTestServer(scanner, &stubBroadcast{})

	req := httptest.NewRequest(http.MethodPost, "/cron/rain-alerts", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, scanner.calls)
}

func TestCronRainAlerts_ScanError(t *testing.T) {
	scanner := &stubScanner{err: errors.New("db down")}
	srv := newTestServer(scanner, &stubBroadcast{})

	rec := doRequest(t, srv, http.MethodPost, "/cron/rain-alerts", "cron-secret")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCronMorningReport(t *testing.T) {
	broadcast := &stubBroadcast{summary: report.BroadcastSummary{Users: 3, Delivered: 2, Failed: 1}}
	srv := newTestServer(&stubScanner{}, broadcast)

	rec := doRequest(t, srv, http.MethodPost, "/cron/morning-report", "cron-secret")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, broadcast.calls)
	assert.JSONEq(t, `{"users":3,"delivered":2,"failed":1}`, rec.Body.String())
}

func TestEmptyConfiguredSecretRejectsEverything(t *testing.T) {
	srv := New(&stubScanner{}, &stubBroadcast{}, types.SecretString(""), types.NewLogger(nil))

	rec := doRequest(t, srv, http.MethodPost, "/cron/rain-alerts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	srv := newTestServer(&stubScanner{}, &stubBroadcast{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
