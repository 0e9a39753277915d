package rates

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkassa/kassaterm/pkg/logger"
)

func TestFetchAndUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base": "RUB", "rates": {"USD": 0.0108, "EUR": 0.0099}}`))
	}))
	defer server.Close()

	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	service := NewService(server.URL, time.Minute, log)

	require.NoError(t, service.FetchAndUpdate())

	snapshot := service.Snapshot()
	assert.Equal(t, "RUB", snapshot.Base)
	assert.True(t, snapshot.Rates["USD"].Equal(decimal.RequireFromString("0.0108")))
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestStaleSnapshotServedOnFailure(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"base": "RUB", "rates": {"USD": 0.0108}}`))
	}))
	defer server.Close()

	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	service := NewService(server.URL, time.Minute, log)

	require.NoError(t, service.FetchAndUpdate())
	failing.Store(true)
	assert.Error(t, service.FetchAndUpdate())

	snapshot := service.Snapshot()
	assert.True(t, snapshot.Rates["USD"].Equal(decimal.RequireFromString("0.0108")))
}

func TestSnapshotIsACopy(t *testing.T) {
	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	service := NewService("", time.Minute, log)

	snapshot := service.Snapshot()
	snapshot.Rates["USD"] = decimal.NewFromInt(1)

	assert.Empty(t, service.Snapshot().Rates)
}
