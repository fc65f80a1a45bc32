// ABOUTME: Call dispatcher: the public client API for the five governance operations.
// ABOUTME: Builds arguments, selects query vs update, routes mock or real, maps failures to the taxonomy.

package canister

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/degov-labs/degov-oracle/internal/candid"
)

// Wire method names exposed by the governance canister.
const (
	methodCreateProposal     = "createProposal"
	methodCastVote           = "castVote"
	methodGetProposal        = "getProposal"
	methodGetActiveProposals = "getActiveProposals"
	methodGetProposalResults = "getProposalResults"
)

// voteAccepted is the confirmation reported when an update call is accepted
// by the gateway without a synchronous reply body.
const voteAccepted = "vote accepted"

// Client talks to one governance canister. It is safe for concurrent use;
// arbitrarily many calls may be in flight sharing the pooled connection.
// A failed call leaves the client fully usable.
type Client struct {
	endpoint   Endpoint
	canisterID []byte
	transport  *transport
	mock       mockResponder
	observer   Observer
	now        func() time.Time
}

// ClientOption customizes a Client at construction.
type ClientOption func(*Client)

// WithObserver installs observers for the client's extension points,
// replacing the default slog observer.
func WithObserver(obs ...Observer) ClientOption {
	return func(c *Client) {
		switch len(obs) {
		case 0:
		case 1:
			c.observer = obs[0]
		default:
			c.observer = observers(obs)
		}
	}
}

// New builds a client for the given endpoint string. Resolution never
// fails; see ResolveEndpoint for the recognized forms.
func New(rawEndpoint string, opts ...ClientOption) *Client {
	endpoint := ResolveEndpoint(rawEndpoint)
	c := &Client{
		endpoint:   endpoint,
		canisterID: principalBytes(endpoint.CanisterID),
		transport:  newTransport(endpoint.Origin),
		observer:   NewLogObserver(slog.Default()),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the resolved call target.
func (c *Client) Endpoint() Endpoint { return c.endpoint }

// Close releases the pooled connection. The client must not be used after
// Close, except that in-flight calls finish normally.
func (c *Client) Close() { c.transport.Close() }

// CreateProposal submits a new proposal and returns its id. When the
// gateway only acknowledges acceptance (202), the id is 0 and the error nil;
// confirmation polling is out of scope.
func (c *Client) CreateProposal(ctx context.Context, args ProposalArguments) (uint64, error) {
	value, accepted, err := c.call(ctx, methodCreateProposal, KindCall, []candid.Value{
		candid.Record{
			{Name: "request", Value: candid.Record{
				{Name: "title", Value: candid.Text(args.Title)},
				{Name: "description", Value: candid.Text(args.Description)},
				{Name: "options", Value: candid.TextVec(args.Options)},
				{Name: "duration_hours", Value: candid.NatOf(args.DurationHours)},
			}},
			{Name: "creator", Value: candid.Text(args.Creator)},
		},
	})
	if err != nil {
		return 0, err
	}
	if accepted {
		return 0, nil
	}
	n, ok := value.(candid.Nat)
	if !ok {
		return 0, c.classify(methodCreateProposal,
			&DecodingError{Err: fmt.Errorf("createProposal payload is %T, want nat", value)})
	}
	id, fits := n.Uint64()
	if !fits {
		return 0, c.classify(methodCreateProposal,
			&DecodingError{Err: fmt.Errorf("proposal id %s overflows uint64", n)})
	}
	return id, nil
}

// CastVote records a vote and returns the canister's confirmation text.
func (c *Client) CastVote(ctx context.Context, args VoteArguments) (string, error) {
	value, accepted, err := c.call(ctx, methodCastVote, KindCall, []candid.Value{
		candid.Record{
			{Name: "request", Value: candid.Record{
				{Name: "proposal_id", Value: candid.NatOf(args.ProposalID)},
				{Name: "option", Value: candid.Text(args.Option)},
				{Name: "voter_id", Value: candid.Text(args.VoterID)},
			}},
		},
	})
	if err != nil {
		return "", err
	}
	if accepted {
		return voteAccepted, nil
	}
	if text, ok := value.(candid.Text); ok {
		return string(text), nil
	}
	return voteAccepted, nil
}

// GetProposal fetches a single proposal by id.
func (c *Client) GetProposal(ctx context.Context, proposalID uint64) (*Proposal, error) {
	value, _, err := c.call(ctx, methodGetProposal, KindQuery, []candid.Value{
		candid.Record{{Name: "proposalId", Value: candid.NatOf(proposalID)}},
	})
	if err != nil {
		return nil, err
	}
	p, err := proposalFromValue(value)
	if err != nil {
		return nil, c.classify(methodGetProposal, err)
	}
	return p, nil
}

// GetActiveProposals lists proposals currently open for voting.
func (c *Client) GetActiveProposals(ctx context.Context) ([]Proposal, error) {
	value, _, err := c.call(ctx, methodGetActiveProposals, KindQuery, nil)
	if err != nil {
		return nil, err
	}
	proposals, err := proposalsFromValue(value)
	if err != nil {
		return nil, c.classify(methodGetActiveProposals, err)
	}
	return proposals, nil
}

// GetProposalResults fetches the vote tallies for a proposal.
func (c *Client) GetProposalResults(ctx context.Context, proposalID uint64) (*ProposalResults, error) {
	value, _, err := c.call(ctx, methodGetProposalResults, KindQuery, []candid.Value{
		candid.Record{{Name: "proposalId", Value: candid.NatOf(proposalID)}},
	})
	if err != nil {
		return nil, err
	}
	results, err := resultsFromValue(value)
	if err != nil {
		return nil, c.classify(methodGetProposalResults, err)
	}
	if results.ProposalID == 0 {
		results.ProposalID = proposalID
	}
	return results, nil
}

// call runs the shared pipeline: encode, route mock or real, decode, unwrap.
// accepted reports a 202 on an update call, where no value is decoded.
func (c *Client) call(ctx context.Context, method string, kind CallKind, args []candid.Value) (value candid.Value, accepted bool, err error) {
	c.observer.RequestIssued(method, kind)
	start := time.Now()

	// Arguments encode on both paths: a value the canister could not accept
	// fails identically in local and remote mode.
	argBytes, err := candid.EncodeArgs(args)
	if err != nil {
		return nil, false, c.classify(method, &EncodingError{Method: method, Err: err})
	}

	if c.endpoint.Mode == ModeLocal {
		raw, err := c.mock.respond(method, args)
		if err == nil {
			value, err = unwrapResult(raw)
		}
		if err != nil {
			return nil, false, c.classify(method, err)
		}
		c.observer.ReplyReceived(method, kind, time.Since(start))
		return value, false, nil
	}

	env, err := buildEnvelope(kind, c.canisterID, method, argBytes, c.now())
	if err != nil {
		return nil, false, c.classify(method, &EncodingError{Method: method, Err: err})
	}

	reply, accepted, err := c.transport.exchange(ctx, c.endpoint.CanisterID, kind, env)
	if err != nil {
		return nil, false, c.classify(method, err)
	}
	if accepted {
		c.observer.ReplyReceived(method, kind, time.Since(start))
		return nil, true, nil
	}

	value, err = decodeReply(reply)
	if err != nil {
		return nil, false, c.classify(method, err)
	}
	c.observer.ReplyReceived(method, kind, time.Since(start))
	return value, false, nil
}

// classify reports a failure to the observer and returns it unchanged.
func (c *Client) classify(method string, err error) error {
	c.observer.FailureClassified(method, err)
	return err
}
