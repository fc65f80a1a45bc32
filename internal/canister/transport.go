// ABOUTME: HTTP transport against the boundary gateway with one pooled, lazily-created client.
// ABOUTME: Enforces the per-call timeout and the 200/202/other status policy.

package canister

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// callTimeout bounds each request independently. A timeout terminates only
// the call that incurred it.
const callTimeout = 30 * time.Second

// maxReplyBytes caps how much of a gateway response is read.
const maxReplyBytes = 4 << 20

type transport struct {
	origin  string
	timeout time.Duration

	mu     sync.Mutex
	client *http.Client
}

func newTransport(origin string) *transport {
	return &transport{origin: origin, timeout: callTimeout}
}

// httpClient returns the shared pooled client, creating it on first use.
func (t *transport) httpClient() *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		t.client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return t.client
}

// Close releases the pooled connections. Safe to call multiple times and
// concurrently with in-flight calls; those finish on their own connections.
func (t *transport) Close() {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client != nil {
		client.CloseIdleConnections()
	}
}

// exchange posts the envelope for method and applies the status policy:
// 200 returns the reply body for decoding; 202 on an update call reports
// accepted with no body; anything else is a TransportError carrying the
// status and the body verbatim.
func (t *transport) exchange(ctx context.Context, canisterID string, kind CallKind, body []byte) (reply []byte, accepted bool, err error) {
	url := fmt.Sprintf("%s/api/v2/canister/%s/%s", t.origin, canisterID, kind)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/cbor")

	start := time.Now()
	resp, err := t.httpClient().Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, false, &TransportTimeout{Elapsed: time.Since(start)}
		}
		return nil, false, fmt.Errorf("posting to gateway: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, false, &TransportTimeout{Elapsed: time.Since(start)}
		}
		return nil, false, fmt.Errorf("reading gateway response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, false, nil
	case resp.StatusCode == http.StatusAccepted && kind == KindCall:
		// Accepted but unconfirmed; execution completes asynchronously and
		// confirmation polling is out of scope.
		return nil, true, nil
	default:
		return nil, false, &TransportError{StatusCode: resp.StatusCode, Body: string(data)}
	}
}
