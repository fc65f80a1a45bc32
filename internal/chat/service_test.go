// ABOUTME: Tests for the chat service pipeline: ack, dedupe, rate limiting, routing, reply text.

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degov-labs/degov-oracle/internal/candid"
	"github.com/degov-labs/degov-oracle/internal/canister"
)

// fakeGovernance records calls and returns canned results.
type fakeGovernance struct {
	createArgs *canister.ProposalArguments
	createID   uint64
	createErr  error

	voteArgs *canister.VoteArguments
	voteErr  error

	proposal    *canister.Proposal
	proposalErr error

	active    []canister.Proposal
	activeErr error
}

func (f *fakeGovernance) CreateProposal(_ context.Context, args canister.ProposalArguments) (uint64, error) {
	f.createArgs = &args
	return f.createID, f.createErr
}

func (f *fakeGovernance) CastVote(_ context.Context, args canister.VoteArguments) (string, error) {
	f.voteArgs = &args
	if f.voteErr != nil {
		return "", f.voteErr
	}
	return "vote recorded", nil
}

func (f *fakeGovernance) GetProposal(_ context.Context, _ uint64) (*canister.Proposal, error) {
	return f.proposal, f.proposalErr
}

func (f *fakeGovernance) GetActiveProposals(_ context.Context) ([]canister.Proposal, error) {
	return f.active, f.activeErr
}

func (f *fakeGovernance) GetProposalResults(_ context.Context, _ uint64) (*canister.ProposalResults, error) {
	return nil, errors.New("not used in these tests")
}

func testService(t *testing.T, gov Governance, opts Options) *Service {
	t.Helper()
	s := NewService(gov, slog.New(slog.NewTextHandler(testWriter{t}, nil)), opts)
	t.Cleanup(s.Close)
	return s
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func textMessage(text string) Message {
	return Message{
		MsgID:     uuid.New(),
		Timestamp: time.Now().UTC(),
		Content:   []Content{{Type: ContentTypeText, Text: text}},
	}
}

func TestHandleMessage_AcknowledgesEveryMessage(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{})
	msg := textMessage("help")

	ack, reply := s.HandleMessage(context.Background(), "agent1", msg)

	assert.Equal(t, msg.MsgID, ack.AcknowledgedMsgID)
	assert.False(t, ack.Timestamp.IsZero())
	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "DeGov Oracle Help")
}

func TestHandleMessage_DuplicateDeliveryGetsNoReply(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{DedupeTTL: time.Minute})
	msg := textMessage("help")

	ack, reply := s.HandleMessage(context.Background(), "agent1", msg)
	require.NotNil(t, reply)
	assert.Equal(t, msg.MsgID, ack.AcknowledgedMsgID)

	ack, reply = s.HandleMessage(context.Background(), "agent1", msg)
	assert.Equal(t, msg.MsgID, ack.AcknowledgedMsgID, "duplicates are still acknowledged")
	assert.Nil(t, reply)
}

func TestHandleMessage_RateLimitedSender(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{RatePerSender: 0.001, Burst: 1})

	_, first := s.HandleMessage(context.Background(), "chatty", textMessage("help"))
	require.NotNil(t, first)

	_, second := s.HandleMessage(context.Background(), "chatty", textMessage("help"))
	require.NotNil(t, second)
	assert.Equal(t, rateLimitedMessage, second.Text())

	// A different sender has its own bucket.
	_, other := s.HandleMessage(context.Background(), "quiet", textMessage("help"))
	require.NotNil(t, other)
	assert.NotEqual(t, rateLimitedMessage, other.Text())
}

func TestHandleMessage_InvalidInput(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{})

	for _, text := range []string{"x", "<script>alert(1)</script> hello"} {
		_, reply := s.HandleMessage(context.Background(), "agent1", textMessage(text))
		require.NotNil(t, reply)
		assert.Equal(t, invalidMessage, reply.Text(), "input: %q", text)
	}
}

func TestHandleMessage_UnknownIntent(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("the weather is nice today"))
	require.NotNil(t, reply)
	assert.Equal(t, unknownMessage, reply.Text())
}

func TestHandleMessage_CreateProposal(t *testing.T) {
	gov := &fakeGovernance{createID: 7}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "creator-agent",
		textMessage("Create proposal: Fund the treasury, options For and Against"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "Proposal #7 created")
	require.NotNil(t, gov.createArgs)
	assert.Equal(t, "Fund the treasury", gov.createArgs.Title)
	assert.Equal(t, []string{"For", "Against"}, gov.createArgs.Options)
	assert.Equal(t, "creator-agent", gov.createArgs.Creator)
	assert.Equal(t, uint64(72), gov.createArgs.DurationHours)
}

func TestHandleMessage_CreateProposalAcceptedWithoutID(t *testing.T) {
	s := testService(t, &fakeGovernance{createID: 0}, Options{})

	_, reply := s.HandleMessage(context.Background(), "creator-agent",
		textMessage("Create proposal: Fund the treasury"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "Proposal submitted")
	assert.Contains(t, reply.Text(), "processing")
}

func TestHandleMessage_CreateProposalFailure(t *testing.T) {
	gov := &fakeGovernance{createErr: &canister.CanisterRejection{Code: 5, Message: "out of cycles"}}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "creator-agent",
		textMessage("Create proposal: Fund the treasury"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "❌ Failed to create proposal")
	assert.Contains(t, reply.Text(), "out of cycles")
}

func TestHandleMessage_CastVoteShowsTallies(t *testing.T) {
	gov := &fakeGovernance{
		proposal: &canister.Proposal{
			ID:    3,
			Title: "Fund the treasury",
			Votes: []canister.VoteTally{{Option: "For", Count: 9}, {Option: "Against", Count: 2}},
		},
	}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "voter-agent", textMessage("Vote for on proposal 3"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "Vote cast successfully")
	assert.Contains(t, reply.Text(), "For: 9")
	require.NotNil(t, gov.voteArgs)
	assert.Equal(t, uint64(3), gov.voteArgs.ProposalID)
	assert.Equal(t, "For", gov.voteArgs.Option)
	assert.Equal(t, "voter-agent", gov.voteArgs.VoterID)
}

func TestHandleMessage_CastVoteSucceedsWhenFollowUpReadFails(t *testing.T) {
	gov := &fakeGovernance{proposalErr: errors.New("gateway unavailable")}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "voter-agent", textMessage("Vote against on proposal 3"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "Vote cast successfully")
	assert.NotContains(t, reply.Text(), "Failed")
}

func TestHandleMessage_CastVoteFailure(t *testing.T) {
	gov := &fakeGovernance{voteErr: &canister.ApplicationError{Payload: candid.Text("Already voted")}}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "voter-agent", textMessage("Vote for on proposal 3"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "❌ Failed to cast vote")
	assert.Contains(t, reply.Text(), "Already voted")
}

func TestHandleMessage_CheckStatus(t *testing.T) {
	gov := &fakeGovernance{
		proposal: &canister.Proposal{
			ID:     4,
			Title:  "Upgrade the canister",
			Status: "Active",
			Votes:  []canister.VoteTally{{Option: "For", Count: 5}, {Option: "Against", Count: 1}},
		},
	}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("What's the status of proposal 4?"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "🟢 Proposal #4: Upgrade the canister")
	assert.Contains(t, reply.Text(), "6 total votes")
	assert.Contains(t, reply.Text(), "For: 5 votes")
}

func TestHandleMessage_CheckStatusNotFound(t *testing.T) {
	gov := &fakeGovernance{proposalErr: &canister.ApplicationError{Payload: candid.Text("Proposal not found")}}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("status of proposal 99"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "❌ Failed to find proposal")
	assert.Contains(t, reply.Text(), "Proposal not found")
}

func TestHandleMessage_ListActive(t *testing.T) {
	gov := &fakeGovernance{
		active: []canister.Proposal{
			{ID: 1, Title: "First", Votes: []canister.VoteTally{{Option: "For", Count: 3}}},
			{ID: 2, Title: "Second"},
		},
	}
	s := testService(t, gov, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("show active proposals"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "#1: First (3 votes)")
	assert.Contains(t, reply.Text(), "#2: Second (0 votes)")
	assert.Contains(t, reply.Text(), "Showing 2 proposals")
}

func TestHandleMessage_ListActiveEmpty(t *testing.T) {
	s := testService(t, &fakeGovernance{}, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("list proposals"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "No active proposals")
}

func TestHandleMessage_ListActiveCapsAtFive(t *testing.T) {
	var active []canister.Proposal
	for i := uint64(1); i <= 8; i++ {
		active = append(active, canister.Proposal{ID: i, Title: "P"})
	}
	s := testService(t, &fakeGovernance{active: active}, Options{})

	_, reply := s.HandleMessage(context.Background(), "agent1", textMessage("show active proposals"))

	require.NotNil(t, reply)
	assert.Contains(t, reply.Text(), "Showing 5 proposals")
	assert.NotContains(t, reply.Text(), "#6:")
}
