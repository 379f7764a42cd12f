package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/govalues/decimal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/txengine/internal/ledger"
	"github.com/tinoosan/txengine/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setup(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.New()
	for _, op := range []ledger.Operation{
		ledger.Deposit(2, 1, decimal.MustParse("10.0")),
		ledger.Deposit(1, 2, decimal.MustParse("1.5")),
		ledger.Dispute(2, 1),
	} {
		require.NoError(t, store.Apply(op))
	}
	return store, New(store, testLogger()).Handler()
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListClients(t *testing.T) {
	_, h := setup(t)
	rec := do(t, h, "/v1/clients")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp listClientsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, balanceResponse{Client: 1, Available: "1.5", Held: "0.0", Total: "1.5"}, resp.Items[0])
	assert.Equal(t, balanceResponse{Client: 2, Available: "0.0", Held: "10.0", Total: "10.0"}, resp.Items[1])
}

func TestGetClient(t *testing.T) {
	_, h := setup(t)
	rec := do(t, h, "/v1/clients/2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp clientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "10.0", resp.Held)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, recordResponse{Tx: 1, Amount: "10.0", Disputed: true}, resp.Transactions[0])
}

func TestGetClient_Errors(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, "/v1/clients/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "not_found", er.Code)

	for _, bad := range []string{"abc", "70000", "-1"} {
		rec = do(t, h, "/v1/clients/"+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestReportCSV(t *testing.T) {
	_, h := setup(t)
	rec := do(t, h, "/v1/report.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Equal(t, "client,available,held,total,locked\n1,1.5,0.0,1.5,false\n2,0.0,10.0,10.0,false\n", rec.Body.String())
}

type notReady struct{ *memory.Store }

func (notReady) Ready(context.Context) error { return errors.New("down") }

func TestHealthAndReady(t *testing.T) {
	store, h := setup(t)
	assert.Equal(t, http.StatusOK, do(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, do(t, h, "/readyz").Code)

	h = New(notReady{store}, testLogger()).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	store, _ := setup(t)
	reg := prometheus.NewRegistry()
	h := New(store, testLogger(), WithRegistry(reg)).Handler()
	do(t, h, "/v1/clients")

	rec := do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `txengine_http_requests_total{method="GET",status="200"} 1`)
}

func TestReadOnly(t *testing.T) {
	_, h := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
