package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestMetrics_Contadores(t *testing.T) {
	m := NewMetrics()
	m.MovementRecorded(entity.MovementSale)
	m.MovementRecorded(entity.MovementSale)
	m.MovementRecorded(entity.MovementPurchase)
	m.TransferTransition("", entity.TransferPending)
	m.TransferTransition(entity.TransferPending, entity.TransferInTransit)
	m.TxRetried()
	m.ObserveRequest("GET", "/api/inventory", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("purchase")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfers.WithLabelValues("none", "pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.TxRetried()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), MetricTxRetriesTotal+" 1")
}

func TestSetupTracing_Deshabilitado(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.TelemetryConfig{OTelEnabled: false}, "stock-ledger")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
