package netstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ziflex/lecho/v3"
)

const rootBody = `{"horizon_version":"2.30.0","core_version":"stellar-core 21.0.0","current_protocol_version":21,"history_latest_ledger":51234567}`

func newTestClient(url string) *Client {
	c := NewClient(url, url, lecho.New(os.Stdout))
	c.maxElapsed = 2 * time.Second
	return c
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(rootBody))
	}))
	defer srv.Close()

	health, err := newTestClient(srv.URL).Fetch(context.Background(), Public)
	require.NoError(t, err)
	assert.Equal(t, Public, health.Network)
	assert.Equal(t, "2.30.0", health.HorizonVersion)
	assert.Equal(t, int32(21), health.CurrentProtocolVersion)
	assert.Equal(t, int64(51234567), health.HistoryLatestLedger)
	assert.NotZero(t, health.FetchedAtUnixMs)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(rootBody))
	}))
	defer srv.Close()

	health, err := newTestClient(srv.URL).Fetch(context.Background(), Testnet)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, Testnet, health.Network)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), Testnet)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchUnknownNetwork(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").Fetch(context.Background(), "futurenet")
	assert.Error(t, err)
}
