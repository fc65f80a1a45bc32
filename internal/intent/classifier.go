// ABOUTME: Regex intent classification for governance chat messages.
// ABOUTME: Patterns are checked help-first, then create, vote, status, list; anything else is unknown.

package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is a recognized governance action.
type Intent string

const (
	CreateProposal Intent = "CREATE_PROPOSAL"
	CastVote       Intent = "CAST_VOTE"
	CheckStatus    Intent = "CHECK_STATUS"
	ListActive     Intent = "LIST_ACTIVE"
	Help           Intent = "HELP"
	Unknown        Intent = "UNKNOWN"
)

// defaultDurationHours is the voting window applied when the message does
// not name one.
const defaultDurationHours = 72

// Params carries the parameters extracted alongside an intent. Only the
// fields relevant to the intent are populated.
type Params struct {
	Title         string
	Description   string
	Options       []string
	DurationHours uint64

	ProposalID uint64
	Option     string
}

var (
	helpPatterns = compileAll(
		`\bhelp\b`,
		`what\s+can\s+you\s+do`,
		`how\s+to\s+use`,
	)
	createPatterns = compileAll(
		`create\s+proposal`,
		`new\s+proposal`,
		`propose\s+`,
		`submit\s+proposal`,
	)
	listPatterns = compileAll(
		`what\s+can\s+i\s+vote`,
		`active\s+proposals`,
		`show\s+proposals`,
		`list\s+proposals`,
	)

	votePattern     = regexp.MustCompile(`vote\s+(\w+)\s+on\s+proposal\s+(\d+)`)
	bareVotePattern = regexp.MustCompile(`(\w+)\s+on\s+proposal\s+(\d+)`)
	statusPattern   = regexp.MustCompile(`proposal\s+(\d+)`)

	titlePattern       = regexp.MustCompile(`(?i)proposal:?\s+([^,\n]+)`)
	descriptionPattern = regexp.MustCompile(`(?i)description:?\s+([^,\n]+)`)
	optionsPattern     = regexp.MustCompile(`(?i)options?\s+([^\n]+)`)
	optionsSplitter    = regexp.MustCompile(`[,\s]+and\s+|\s+or\s+|,`)
)

// bareVoteWords are the option words accepted without a leading "vote".
var bareVoteWords = map[string]bool{"for": true, "against": true, "yes": true, "no": true}

// Classifier maps free text to an intent and its parameters.
type Classifier struct{}

// NewClassifier returns a ready classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the intent of a message and any extracted parameters.
func (c *Classifier) Classify(message string) (Intent, Params) {
	lower := strings.ToLower(strings.TrimSpace(message))

	if matchesAny(lower, helpPatterns) {
		return Help, Params{}
	}
	if matchesAny(lower, createPatterns) {
		return CreateProposal, extractProposalDetails(message)
	}
	if params, ok := extractVoteDetails(lower); ok {
		return CastVote, params
	}
	if m := statusPattern.FindStringSubmatch(lower); m != nil {
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err == nil {
			return CheckStatus, Params{ProposalID: id}
		}
	}
	if matchesAny(lower, listPatterns) {
		return ListActive, Params{}
	}
	return Unknown, Params{}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// extractProposalDetails pulls title, description and options out of a
// create-proposal message, applying defaults where the message is silent.
func extractProposalDetails(message string) Params {
	params := Params{
		Title:         "Untitled Proposal",
		DurationHours: defaultDurationHours,
	}

	if m := titlePattern.FindStringSubmatch(message); m != nil {
		params.Title = strings.TrimSpace(m[1])
	}
	params.Description = params.Title
	if m := descriptionPattern.FindStringSubmatch(message); m != nil {
		params.Description = strings.TrimSpace(m[1])
	}

	if m := optionsPattern.FindStringSubmatch(message); m != nil {
		for _, opt := range optionsSplitter.Split(m[1], -1) {
			if opt = strings.TrimSpace(opt); opt != "" {
				params.Options = append(params.Options, opt)
			}
		}
	}
	if len(params.Options) == 0 {
		params.Options = []string{"For", "Against"}
	}
	return params
}

// extractVoteDetails recognizes "vote X on proposal N" and the bare
// "X on proposal N" form for the usual option words.
func extractVoteDetails(lower string) (Params, bool) {
	if m := votePattern.FindStringSubmatch(lower); m != nil {
		if id, err := strconv.ParseUint(m[2], 10, 64); err == nil {
			return Params{Option: titleCase(m[1]), ProposalID: id}, true
		}
	}
	if m := bareVotePattern.FindStringSubmatch(lower); m != nil && bareVoteWords[m[1]] {
		if id, err := strconv.ParseUint(m[2], 10, 64); err == nil {
			return Params{Option: titleCase(m[1]), ProposalID: id}, true
		}
	}
	return Params{}, false
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
