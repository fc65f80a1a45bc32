// ABOUTME: Tests for the gateway transport: status policy, timeout, connection reuse, shutdown.
// ABOUTME: Uses httptest gateways; the client under test is forced into remote mode.

package canister

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange_OKReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/canister/abc/query", r.URL.Path)
		assert.Equal(t, "application/cbor", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("reply-bytes"))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL)
	defer tr.Close()

	body, accepted, err := tr.exchange(context.Background(), "abc", KindQuery, []byte("envelope"))
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, []byte("reply-bytes"), body)
}

func TestExchange_AcceptedUpdateHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/canister/abc/call", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL)
	defer tr.Close()

	body, accepted, err := tr.exchange(context.Background(), "abc", KindCall, nil)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Nil(t, body)
}

func TestExchange_AcceptedQueryIsTransportError(t *testing.T) {
	// 202 is only meaningful for update calls; a query must reply.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL)
	defer tr.Close()

	_, _, err := tr.exchange(context.Background(), "abc", KindQuery, nil)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusAccepted, terr.StatusCode)
}

func TestExchange_ErrorStatusCarriesBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL)
	defer tr.Close()

	_, _, err := tr.exchange(context.Background(), "abc", KindQuery, nil)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 503, terr.StatusCode)
	assert.Equal(t, "overloaded", terr.Body)
}

func TestExchange_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	tr := newTransport(srv.URL)
	tr.timeout = 50 * time.Millisecond
	defer tr.Close()

	_, _, err := tr.exchange(context.Background(), "abc", KindQuery, nil)
	var timeout *TransportTimeout
	require.ErrorAs(t, err, &timeout)
	assert.GreaterOrEqual(t, timeout.Elapsed, 50*time.Millisecond)
}

func TestExchange_ReusesPooledClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL)
	defer tr.Close()

	first := tr.httpClient()
	second := tr.httpClient()
	assert.Same(t, first, second, "the pooled client is created once and shared")
}

func TestTransport_CloseBeforeUse(t *testing.T) {
	tr := newTransport("http://example.invalid")
	tr.Close()
	tr.Close() // idempotent
}
