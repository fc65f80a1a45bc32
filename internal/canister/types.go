// ABOUTME: Argument and result value objects for the five governance operations.
// ABOUTME: Built fresh per call and never persisted by the client.

package canister

// ProposalArguments carries the caller-supplied fields for createProposal.
type ProposalArguments struct {
	Title         string
	Description   string
	Options       []string
	DurationHours uint64
	Creator       string
}

// VoteArguments carries the caller-supplied fields for castVote.
type VoteArguments struct {
	ProposalID uint64
	Option     string
	VoterID    string
}

// VoteTally is one option's vote count.
type VoteTally struct {
	Option string
	Count  uint64
}

// Proposal is the fixed-shape decoded proposal record. It is constructed
// once by the reply decoder; callers never re-interpret raw reply values.
type Proposal struct {
	ID          uint64
	Title       string
	Description string
	Options     []string
	Votes       []VoteTally
	Status      string
	Creator     string
}

// TotalVotes sums the tally counts.
func (p *Proposal) TotalVotes() uint64 {
	var total uint64
	for _, v := range p.Votes {
		total += v.Count
	}
	return total
}

// ProposalResults is the decoded result set for getProposalResults.
type ProposalResults struct {
	ProposalID uint64
	Votes      []VoteTally
	TotalVotes uint64
	Status     string
}
