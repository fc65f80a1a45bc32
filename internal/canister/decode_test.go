// ABOUTME: Tests for reply decoding: replied/rejected shapes, Ok/Err unwrap, typed record mapping.
// ABOUTME: Keeps DecodingError distinct from CanisterRejection.

package canister

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degov-labs/degov-oracle/internal/candid"
)

// repliedEnvelope builds a CBOR reply envelope carrying the candid encoding
// of the given value.
func repliedEnvelope(t *testing.T, v candid.Value) []byte {
	t.Helper()
	arg, err := candid.EncodeArgs([]candid.Value{v})
	require.NoError(t, err)
	data, err := cbor.Marshal(wireReply{Replied: &wireReplied{Arg: arg}})
	require.NoError(t, err)
	return data
}

func TestDecodeReply_OkUnwrapsToSuccess(t *testing.T) {
	raw := repliedEnvelope(t, candid.Variant{Tag: "Ok", Value: candid.NatOf(7)})

	value, err := decodeReply(raw)
	require.NoError(t, err)
	id, _ := value.(candid.Nat).Uint64()
	assert.Equal(t, uint64(7), id)
}

func TestDecodeReply_ErrUnwrapsToApplicationError(t *testing.T) {
	raw := repliedEnvelope(t, candid.Variant{Tag: "Err", Value: candid.Text("proposal closed")})

	_, err := decodeReply(raw)
	require.Error(t, err)
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "proposal closed", appErr.Error())
}

func TestDecodeReply_UntaggedPassesThrough(t *testing.T) {
	raw := repliedEnvelope(t, candid.Text("plain"))

	value, err := decodeReply(raw)
	require.NoError(t, err)
	assert.Equal(t, candid.Text("plain"), value)
}

func TestDecodeReply_OtherVariantPassesThrough(t *testing.T) {
	raw := repliedEnvelope(t, candid.Variant{Tag: "active", Value: candid.Null{}})

	value, err := decodeReply(raw)
	require.NoError(t, err)
	v, ok := value.(candid.Variant)
	require.True(t, ok)
	assert.Equal(t, "active", v.Tag)
}

func TestDecodeReply_RejectedVerbatim(t *testing.T) {
	data, err := cbor.Marshal(wireReply{Rejected: &wireRejected{
		RejectCode:    3,
		RejectMessage: "not found",
	}})
	require.NoError(t, err)

	_, err = decodeReply(data)
	require.Error(t, err)
	var rejection *CanisterRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, uint64(3), rejection.Code)
	assert.Equal(t, "not found", rejection.Message)
}

func TestDecodeReply_GarbageIsDecodingError(t *testing.T) {
	_, err := decodeReply([]byte{0xff, 0x00, 0x13, 0x37})
	require.Error(t, err)
	var decErr *DecodingError
	assert.ErrorAs(t, err, &decErr)
	var rejection *CanisterRejection
	assert.False(t, errors.As(err, &rejection), "garbage must not classify as a rejection")
}

func TestDecodeReply_BadCandidInsideRepliedIsDecodingError(t *testing.T) {
	data, err := cbor.Marshal(wireReply{Replied: &wireReplied{Arg: []byte("NOPE")}})
	require.NoError(t, err)

	_, err = decodeReply(data)
	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeReply_NeitherShapeIsDecodingError(t *testing.T) {
	data, err := cbor.Marshal(wireReply{})
	require.NoError(t, err)

	_, err = decodeReply(data)
	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestProposalFromValue_FullRecord(t *testing.T) {
	p, err := proposalFromValue(mockProposal(42))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), p.ID)
	assert.Equal(t, "Community Proposal #42", p.Title)
	assert.Equal(t, []string{"For", "Against"}, p.Options)
	assert.Equal(t, "Active", p.Status)
	require.Len(t, p.Votes, 2)
	assert.Equal(t, VoteTally{Option: "For", Count: 8}, p.Votes[0])
	assert.Equal(t, uint64(12), p.TotalVotes())
}

func TestProposalFromValue_OptSome(t *testing.T) {
	p, err := proposalFromValue(candid.Opt{Some: mockProposal(5)})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.ID)
}

func TestProposalFromValue_OptNoneFails(t *testing.T) {
	_, err := proposalFromValue(candid.Opt{})
	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestTalliesFromValue_TuplePairs(t *testing.T) {
	// The votes field as a sequence of (text, nat) tuples: candid encodes
	// tuples as records with numeric field names.
	pairs := candid.Vec{
		candid.Record{
			{Name: "0", Value: candid.Text("For")},
			{Name: "1", Value: candid.NatOf(3)},
		},
	}
	tallies, err := talliesFromValue(pairs)
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, VoteTally{Option: "For", Count: 3}, tallies[0])
}

func TestResultsFromValue_BareTallySequence(t *testing.T) {
	res, err := resultsFromValue(mockTallies())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), res.TotalVotes)
	require.Len(t, res.Votes, 2)
}
