// ABOUTME: Chat service: acknowledge, dedupe, rate limit, classify, route to governance, reply.
// ABOUTME: Governance failures become friendly replies; the service itself never errors outward.

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/degov-labs/degov-oracle/internal/canister"
	"github.com/degov-labs/degov-oracle/internal/dedupe"
	"github.com/degov-labs/degov-oracle/internal/intent"
)

// Governance is the slice of the canister client the chat layer needs.
type Governance interface {
	CreateProposal(ctx context.Context, args canister.ProposalArguments) (uint64, error)
	CastVote(ctx context.Context, args canister.VoteArguments) (string, error)
	GetProposal(ctx context.Context, proposalID uint64) (*canister.Proposal, error)
	GetActiveProposals(ctx context.Context) ([]canister.Proposal, error)
	GetProposalResults(ctx context.Context, proposalID uint64) (*canister.ProposalResults, error)
}

// Options tunes the service's protective layers.
type Options struct {
	// DedupeTTL is how long message ids are remembered. Zero disables
	// deduplication.
	DedupeTTL time.Duration
	// DedupeSize bounds the dedupe cache; defaults to 4096 when TTL is set.
	DedupeSize int
	// RatePerSender and Burst configure per-sender throttling. Zero rate
	// disables throttling.
	RatePerSender float64
	Burst         int
}

// Service handles inbound chat messages for the governance agent.
type Service struct {
	gov        Governance
	classifier *intent.Classifier
	seen       *dedupe.Cache
	limiter    *senderLimiter
	log        *slog.Logger
}

// NewService builds a chat service around a governance client.
func NewService(gov Governance, log *slog.Logger, opts Options) *Service {
	s := &Service{
		gov:        gov,
		classifier: intent.NewClassifier(),
		limiter:    newSenderLimiter(opts.RatePerSender, opts.Burst),
		log:        log,
	}
	if opts.DedupeTTL > 0 {
		size := opts.DedupeSize
		if size <= 0 {
			size = 4096
		}
		s.seen = dedupe.New(opts.DedupeTTL, size)
	}
	return s
}

// Close releases the service's background resources.
func (s *Service) Close() {
	if s.seen != nil {
		s.seen.Close()
	}
}

// HandleMessage processes one inbound message. The acknowledgement is always
// returned; the reply is nil only for duplicate deliveries, which were
// already answered the first time.
func (s *Service) HandleMessage(ctx context.Context, sender string, msg Message) (Acknowledgement, *Message) {
	ack := Acknowledgement{
		Timestamp:         time.Now().UTC(),
		AcknowledgedMsgID: msg.MsgID,
	}

	if s.seen != nil && msg.MsgID != uuid.Nil && s.seen.Seen(msg.MsgID.String()) {
		s.log.Debug("duplicate chat message ignored", "sender", sender, "msg_id", msg.MsgID)
		return ack, nil
	}

	if !s.limiter.allow(sender) {
		s.log.Warn("sender rate limited", "sender", sender)
		reply := NewTextMessage(rateLimitedMessage)
		return ack, &reply
	}

	text := msg.Text()
	s.log.Info("chat message received", "sender", sender, "length", len(text))

	var response string
	if !ValidInput(text) {
		response = invalidMessage
	} else {
		kind, params := s.classifier.Classify(text)
		s.log.Debug("intent classified", "sender", sender, "intent", string(kind))
		response = s.dispatch(ctx, kind, params, sender)
	}

	reply := NewTextMessage(TruncateReply(response))
	return ack, &reply
}

// dispatch routes a classified intent to its governance handler.
func (s *Service) dispatch(ctx context.Context, kind intent.Intent, params intent.Params, sender string) string {
	switch kind {
	case intent.CreateProposal:
		return s.handleCreateProposal(ctx, params, sender)
	case intent.CastVote:
		return s.handleCastVote(ctx, params, sender)
	case intent.CheckStatus:
		return s.handleCheckStatus(ctx, params)
	case intent.ListActive:
		return s.handleListActive(ctx)
	case intent.Help:
		return helpMessage
	default:
		return unknownMessage
	}
}

func (s *Service) handleCreateProposal(ctx context.Context, params intent.Params, creator string) string {
	id, err := s.gov.CreateProposal(ctx, canister.ProposalArguments{
		Title:         params.Title,
		Description:   params.Description,
		Options:       params.Options,
		DurationHours: params.DurationHours,
		Creator:       creator,
	})
	if err != nil {
		s.log.Error("create proposal failed", "creator", creator, "error", err)
		return formatFailure("create proposal", err)
	}
	return formatProposalCreated(id, params.Title)
}

func (s *Service) handleCastVote(ctx context.Context, params intent.Params, voter string) string {
	_, err := s.gov.CastVote(ctx, canister.VoteArguments{
		ProposalID: params.ProposalID,
		Option:     params.Option,
		VoterID:    voter,
	})
	if err != nil {
		s.log.Error("cast vote failed", "voter", voter, "proposal_id", params.ProposalID, "error", err)
		return formatFailure("cast vote", err)
	}

	// Show the updated tallies when we can fetch them; the vote itself
	// already succeeded, so a failed follow-up read is not an error.
	p, err := s.gov.GetProposal(ctx, params.ProposalID)
	if err != nil {
		return formatVoteCast(params.ProposalID, nil)
	}
	return formatVoteCast(params.ProposalID, p)
}

func (s *Service) handleCheckStatus(ctx context.Context, params intent.Params) string {
	if params.ProposalID == 0 {
		return "Please specify which proposal you'd like to check. Try: 'What's the status of proposal 1?'"
	}
	p, err := s.gov.GetProposal(ctx, params.ProposalID)
	if err != nil {
		s.log.Error("status check failed", "proposal_id", params.ProposalID, "error", err)
		return formatFailure("find proposal", err)
	}
	return formatProposalStatus(p)
}

func (s *Service) handleListActive(ctx context.Context) string {
	proposals, err := s.gov.GetActiveProposals(ctx)
	if err != nil {
		s.log.Error("listing active proposals failed", "error", err)
		return formatFailure("fetch proposals", err)
	}
	return formatActiveProposals(proposals)
}
