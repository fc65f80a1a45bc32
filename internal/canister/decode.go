// ABOUTME: Reply decoding: CBOR reply envelope, candid result bytes, Ok/Err unwrap, typed records.
// ABOUTME: Garbage bytes are DecodingError; explicit rejects are CanisterRejection — never conflated.

package canister

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/degov-labs/degov-oracle/internal/candid"
)

type wireReplied struct {
	Arg []byte `cbor:"arg"`
}

type wireRejected struct {
	RejectCode    uint64 `cbor:"reject_code"`
	RejectMessage string `cbor:"reject_message"`
}

type wireReply struct {
	Replied  *wireReplied  `cbor:"replied"`
	Rejected *wireRejected `cbor:"rejected"`
}

// decodeReply interprets the reply envelope. Exactly one of the two shapes
// must be present: replied yields the (possibly Ok/Err-unwrapped) result
// value, rejected yields a CanisterRejection.
func decodeReply(raw []byte) (candid.Value, error) {
	var reply wireReply
	if err := cbor.Unmarshal(raw, &reply); err != nil {
		return nil, &DecodingError{Err: fmt.Errorf("parsing reply envelope: %w", err)}
	}

	switch {
	case reply.Rejected != nil:
		return nil, &CanisterRejection{
			Code:    reply.Rejected.RejectCode,
			Message: reply.Rejected.RejectMessage,
		}
	case reply.Replied != nil:
		args, err := candid.DecodeArgs(reply.Replied.Arg)
		if err != nil {
			return nil, &DecodingError{Err: err}
		}
		if len(args) == 0 {
			return candid.Null{}, nil
		}
		return unwrapResult(args[0])
	default:
		return nil, &DecodingError{Err: fmt.Errorf("reply envelope has neither replied nor rejected")}
	}
}

// unwrapResult applies the Ok/Err result convention when present. Values
// that carry neither tag pass through unchanged; both shapes are supported.
func unwrapResult(v candid.Value) (candid.Value, error) {
	variant, ok := v.(candid.Variant)
	if !ok {
		return v, nil
	}
	switch variant.Tag {
	case "Ok":
		return variant.Value, nil
	case "Err":
		return nil, &ApplicationError{Payload: variant.Value}
	default:
		return v, nil
	}
}

// proposalFromValue builds the fixed-shape Proposal from a decoded record.
func proposalFromValue(v candid.Value) (*Proposal, error) {
	if opt, ok := v.(candid.Opt); ok {
		if opt.Some == nil {
			return nil, &DecodingError{Err: fmt.Errorf("proposal is absent")}
		}
		v = opt.Some
	}
	rec, ok := v.(candid.Record)
	if !ok {
		return nil, &DecodingError{Err: fmt.Errorf("proposal payload is %T, want record", v)}
	}

	p := &Proposal{
		Title:       textField(rec, "title"),
		Description: textField(rec, "description"),
		Status:      textField(rec, "status"),
		Creator:     textField(rec, "creator"),
	}
	p.ID = natField(rec, "id")

	if opts, ok := rec.Get("options"); ok {
		if vec, ok := opts.(candid.Vec); ok {
			for _, item := range vec {
				if s, ok := item.(candid.Text); ok {
					p.Options = append(p.Options, string(s))
				}
			}
		}
	}
	if votes, ok := rec.Get("votes"); ok {
		tallies, err := talliesFromValue(votes)
		if err != nil {
			return nil, err
		}
		p.Votes = tallies
	}
	return p, nil
}

// proposalsFromValue builds a proposal list from a decoded sequence.
func proposalsFromValue(v candid.Value) ([]Proposal, error) {
	vec, ok := v.(candid.Vec)
	if !ok {
		return nil, &DecodingError{Err: fmt.Errorf("proposal list payload is %T, want sequence", v)}
	}
	proposals := make([]Proposal, 0, len(vec))
	for i, item := range vec {
		p, err := proposalFromValue(item)
		if err != nil {
			return nil, &DecodingError{Err: fmt.Errorf("proposal %d: %w", i, err)}
		}
		proposals = append(proposals, *p)
	}
	return proposals, nil
}

// resultsFromValue builds ProposalResults from either a full results record
// or a bare vote-tally sequence.
func resultsFromValue(v candid.Value) (*ProposalResults, error) {
	if rec, ok := v.(candid.Record); ok {
		if _, hasVotes := rec.Get("votes"); hasVotes {
			votes, _ := rec.Get("votes")
			tallies, err := talliesFromValue(votes)
			if err != nil {
				return nil, err
			}
			res := &ProposalResults{
				ProposalID: natField(rec, "proposal_id"),
				Votes:      tallies,
				Status:     textField(rec, "status"),
			}
			if total, ok := rec.Get("total_votes"); ok {
				if n, ok := total.(candid.Nat); ok {
					res.TotalVotes, _ = n.Uint64()
				}
			} else {
				for _, t := range tallies {
					res.TotalVotes += t.Count
				}
			}
			return res, nil
		}
	}

	tallies, err := talliesFromValue(v)
	if err != nil {
		return nil, err
	}
	res := &ProposalResults{Votes: tallies}
	for _, t := range tallies {
		res.TotalVotes += t.Count
	}
	return res, nil
}

// talliesFromValue decodes a vote-tally sequence. Tallies arrive either as
// records with option/count fields or as two-element tuples.
func talliesFromValue(v candid.Value) ([]VoteTally, error) {
	vec, ok := v.(candid.Vec)
	if !ok {
		return nil, &DecodingError{Err: fmt.Errorf("vote tally payload is %T, want sequence", v)}
	}
	tallies := make([]VoteTally, 0, len(vec))
	for i, item := range vec {
		rec, ok := item.(candid.Record)
		if !ok {
			return nil, &DecodingError{Err: fmt.Errorf("vote tally %d is %T, want record", i, item)}
		}
		tally := VoteTally{}
		if opt, ok := rec.Get("option"); ok {
			if s, ok := opt.(candid.Text); ok {
				tally.Option = string(s)
			}
			tally.Count = natField(rec, "count")
		} else {
			// Tuple form: field 0 is the option, field 1 the count.
			if s, ok := rec.Get("0"); ok {
				if t, ok := s.(candid.Text); ok {
					tally.Option = string(t)
				}
			}
			tally.Count = natField(rec, "1")
		}
		tallies = append(tallies, tally)
	}
	return tallies, nil
}

// textField returns the named text field or "".
func textField(rec candid.Record, name string) string {
	if v, ok := rec.Get(name); ok {
		if s, ok := v.(candid.Text); ok {
			return string(s)
		}
	}
	return ""
}

// natField returns the named nat field clamped to uint64, or 0.
func natField(rec candid.Record, name string) uint64 {
	if v, ok := rec.Get(name); ok {
		if n, ok := v.(candid.Nat); ok {
			u, _ := n.Uint64()
			return u
		}
		if n, ok := v.(candid.Int); ok {
			big := n.Big()
			if big.Sign() >= 0 && big.IsUint64() {
				return big.Uint64()
			}
		}
	}
	return 0
}
