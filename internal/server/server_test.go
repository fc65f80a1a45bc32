// ABOUTME: Tests for the HTTP API: submit round-trips, validation errors, health, metrics mounting.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degov-labs/degov-oracle/internal/canister"
	"github.com/degov-labs/degov-oracle/internal/chat"
	"github.com/degov-labs/degov-oracle/internal/metrics"
)

type stubGovernance struct{}

func (stubGovernance) CreateProposal(context.Context, canister.ProposalArguments) (uint64, error) {
	return 1, nil
}

func (stubGovernance) CastVote(context.Context, canister.VoteArguments) (string, error) {
	return "Vote cast successfully", nil
}

func (stubGovernance) GetProposal(context.Context, uint64) (*canister.Proposal, error) {
	return &canister.Proposal{ID: 1, Title: "Test", Status: "Active"}, nil
}

func (stubGovernance) GetActiveProposals(context.Context) ([]canister.Proposal, error) {
	return nil, nil
}

func (stubGovernance) GetProposalResults(context.Context, uint64) (*canister.ProposalResults, error) {
	return &canister.ProposalResults{ProposalID: 1}, nil
}

func testServer(t *testing.T, m *metrics.Metrics) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	svc := chat.NewService(stubGovernance{}, logger, chat.Options{DedupeTTL: time.Minute})
	t.Cleanup(svc.Close)

	cfg := Config{
		Addr:        "127.0.0.1:0",
		AgentName:   "degov-oracle-test",
		Endpoint:    canister.ResolveEndpoint("uxrrr-q7777-77774-qaaaq-cai"),
		MetricsPath: "/metrics",
	}
	return New(cfg, svc, m, logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

func submitBody(t *testing.T, sender, text string) *bytes.Buffer {
	t.Helper()
	req := SubmitRequest{
		Sender: sender,
		Message: chat.Message{
			MsgID:     uuid.New(),
			Timestamp: time.Now().UTC(),
			Content:   []chat.Content{{Type: chat.ContentTypeText, Text: text}},
		},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestSubmit_RepliesToMessage(t *testing.T) {
	srv := testServer(t, nil)

	body := submitBody(t, "agent1", "show active proposals")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Reply)
	assert.Contains(t, resp.Reply.Text(), "No active proposals")
	assert.False(t, resp.Acknowledgement.Timestamp.IsZero())
}

func TestSubmit_AcknowledgesDuplicateWithoutReply(t *testing.T) {
	srv := testServer(t, nil)

	msgID := uuid.New()
	payload := func() *bytes.Buffer {
		data, err := json.Marshal(SubmitRequest{
			Sender: "agent1",
			Message: chat.Message{
				MsgID:   msgID,
				Content: []chat.Content{{Type: chat.ContentTypeText, Text: "help"}},
			},
		})
		require.NoError(t, err)
		return bytes.NewBuffer(data)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", payload()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", payload()))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Reply)
	assert.Equal(t, msgID, resp.Acknowledgement.AcknowledgedMsgID)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	srv := testServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing sender", `{"message":{"content":[{"type":"text","text":"hi"}]}}`},
		{"missing content", `{"sender":"agent1","message":{"content":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var errResp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp["error"])
		})
	}
}

func TestSubmit_MethodNotAllowed(t *testing.T) {
	srv := testServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "degov-oracle-test", resp.Agent)
	assert.Equal(t, "uxrrr-q7777-77774-qaaaq-cai", resp.CanisterID)
	assert.Equal(t, "remote", resp.Mode)
}

func TestMetricsEndpoint_MountedWhenEnabled(t *testing.T) {
	srv := testServer(t, metrics.New())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/submit", submitBody(t, "agent1", "help")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "degov_chat_messages_total")
}

func TestMetricsEndpoint_AbsentWhenDisabled(t *testing.T) {
	srv := testServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRun_ShutsDownOnContextCancel(t *testing.T) {
	srv := testServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
