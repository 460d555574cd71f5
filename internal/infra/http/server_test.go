package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticState receiving.State

func (s staticState) Snapshot() receiving.State { return receiving.State(s) }

func TestHealth(t *testing.T) {
	h := NewHandler(false, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStatus(t *testing.T) {
	h := NewHandler(false, staticState{
		PendingInvoices: []receiving.PreEntradaItem{{Branch: 1}, {Branch: 2}},
		PendingTotal:    2,
		ReceiptRecords:  []receiving.EntradaNotaItem{{Confirmed: true}, {}, {Confirmed: true}},
		ReceiptTotal:    10,
		Loading:         true,
		LastError:       "falhou",
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var v statusView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, statusView{
		PendingTotal: 2,
		PendingCount: 2,
		ReceiptTotal: 10,
		ReceiptCount: 3,
		Confirmed:    2,
		Loading:      true,
		LastError:    "falhou",
	}, v)
}

func TestMetricsOnlyWhenEnabled(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(false, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(true, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
