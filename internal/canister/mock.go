// ABOUTME: Stateless canned responders for the five governance operations, used in local mode.
// ABOUTME: Parameterized by method name and call arguments; never touches the transport.

package canister

import (
	"fmt"
	"math/rand"

	"github.com/degov-labs/degov-oracle/internal/candid"
)

// mockResponder answers governance calls without a gateway. It keeps no
// state across calls: a mock-created proposal id is not retrievable by a
// later mock getProposal.
type mockResponder struct{}

// respond returns the canned result value for a method. Results flow through
// the same Ok/Err unwrapping and typed mapping as real replies.
func (mockResponder) respond(method string, args []candid.Value) (candid.Value, error) {
	switch method {
	case methodCreateProposal:
		return candid.Variant{Tag: "Ok", Value: candid.NatOf(uint64(rand.Int63n(1000)) + 1)}, nil
	case methodCastVote:
		return candid.Variant{Tag: "Ok", Value: candid.Text("Vote recorded")}, nil
	case methodGetProposal:
		return mockProposal(requestedProposalID(args)), nil
	case methodGetActiveProposals:
		return candid.Vec{mockProposal(1), mockProposal(2)}, nil
	case methodGetProposalResults:
		id := requestedProposalID(args)
		return candid.Record{
			{Name: "proposal_id", Value: candid.NatOf(id)},
			{Name: "votes", Value: mockTallies()},
			{Name: "total_votes", Value: candid.NatOf(12)},
			{Name: "status", Value: candid.Text("Active")},
		}, nil
	default:
		return nil, &CanisterRejection{Code: 3, Message: fmt.Sprintf("method not found: %s", method)}
	}
}

// requestedProposalID pulls the proposal id out of the call arguments so the
// canned record echoes what was asked for.
func requestedProposalID(args []candid.Value) uint64 {
	if len(args) == 0 {
		return 1
	}
	rec, ok := args[0].(candid.Record)
	if !ok {
		return 1
	}
	for _, name := range []string{"proposalId", "proposal_id"} {
		if v, ok := rec.Get(name); ok {
			if n, ok := v.(candid.Nat); ok {
				if id, fits := n.Uint64(); fits && id > 0 {
					return id
				}
			}
		}
	}
	return 1
}

func mockProposal(id uint64) candid.Record {
	return candid.Record{
		{Name: "id", Value: candid.NatOf(id)},
		{Name: "title", Value: candid.Text(fmt.Sprintf("Community Proposal #%d", id))},
		{Name: "description", Value: candid.Text("Locally mocked proposal")},
		{Name: "options", Value: candid.TextVec([]string{"For", "Against"})},
		{Name: "votes", Value: mockTallies()},
		{Name: "status", Value: candid.Text("Active")},
		{Name: "creator", Value: candid.Text("mock")},
	}
}

func mockTallies() candid.Vec {
	return candid.Vec{
		candid.Record{
			{Name: "option", Value: candid.Text("For")},
			{Name: "count", Value: candid.NatOf(8)},
		},
		candid.Record{
			{Name: "option", Value: candid.Text("Against")},
			{Name: "count", Value: candid.NatOf(4)},
		},
	}
}
