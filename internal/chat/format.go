// ABOUTME: Reply text formatting for each governance outcome, plus the help message.

package chat

import (
	"fmt"
	"strings"

	"github.com/degov-labs/degov-oracle/internal/canister"
)

// maxListedProposals caps the active-proposals listing.
const maxListedProposals = 5

const helpMessage = `🤖 DeGov Oracle Help

📝 Create proposals:  "Create proposal: Fund marketing with options For and Against"
🗳️ Vote on proposals: "Vote For on proposal 1"
📊 Check status:      "What's the status of proposal 1?"
📋 List active:       "Show active proposals"

Just talk to me naturally - I'll understand!`

const unknownMessage = "I didn't understand. Try: 'create a proposal', " +
	"'vote on proposal 1', or 'show active proposals'."

const invalidMessage = "Please provide a valid message. " +
	"I can create proposals, cast votes, or check proposal status."

const rateLimitedMessage = "You're sending messages too quickly. " +
	"Give me a moment and try again."

func formatProposalCreated(id uint64, title string) string {
	if id == 0 {
		// Update accepted without a synchronous reply.
		return fmt.Sprintf("✅ Proposal submitted!\n\nTitle: %s\nThe network is processing it; check active proposals shortly.", title)
	}
	return fmt.Sprintf("✅ Proposal #%d created successfully!\n\nTitle: %s\nVoting is now open for 72 hours.", id, title)
}

func formatVoteCast(proposalID uint64, p *canister.Proposal) string {
	if p == nil || len(p.Votes) == 0 {
		return "✅ Vote cast successfully!"
	}
	parts := make([]string, len(p.Votes))
	for i, v := range p.Votes {
		parts[i] = fmt.Sprintf("%s: %d", v.Option, v.Count)
	}
	return fmt.Sprintf("✅ Vote cast successfully!\n\nProposal #%d current results:\n%s",
		proposalID, strings.Join(parts, ", "))
}

func formatProposalStatus(p *canister.Proposal) string {
	var lines []string
	for _, v := range p.Votes {
		lines = append(lines, fmt.Sprintf("  %s: %d votes", v.Option, v.Count))
	}
	statusEmoji := "🔴"
	if p.Status == "Active" {
		statusEmoji = "🟢"
	}
	return fmt.Sprintf("%s Proposal #%d: %s\n\nResults (%d total votes):\n%s\n\nStatus: %s",
		statusEmoji, p.ID, p.Title, p.TotalVotes(), strings.Join(lines, "\n"), p.Status)
}

func formatActiveProposals(proposals []canister.Proposal) string {
	if len(proposals) == 0 {
		return "📝 No active proposals at the moment. Would you like to create one?"
	}
	shown := proposals
	if len(shown) > maxListedProposals {
		shown = shown[:maxListedProposals]
	}
	var lines []string
	for _, p := range shown {
		lines = append(lines, fmt.Sprintf("#%d: %s (%d votes)", p.ID, p.Title, p.TotalVotes()))
	}
	return fmt.Sprintf("📋 Active Proposals:\n\n%s\n\nShowing %d proposals. Say 'status of proposal X' for details.",
		strings.Join(lines, "\n"), len(shown))
}

func formatFailure(action string, err error) string {
	return fmt.Sprintf("❌ Failed to %s: %v", action, err)
}
