// ABOUTME: Call envelope construction and CBOR framing for the gateway protocol.
// ABOUTME: Ingress expiry is issue time plus five minutes, in nanoseconds since epoch.

package canister

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CallKind distinguishes read-only queries from state-mutating update calls.
// The value doubles as the request_type field and the URL path segment.
type CallKind string

const (
	// KindQuery is a read-only call answered synchronously.
	KindQuery CallKind = "query"
	// KindCall is a state-mutating update call the gateway may only accept.
	KindCall CallKind = "call"
)

// ingressExpiryWindow bounds how long a submitted envelope stays valid.
const ingressExpiryWindow = 5 * time.Minute

type envelopeContent struct {
	RequestType   string `cbor:"request_type"`
	Sender        []byte `cbor:"sender"`
	CanisterID    []byte `cbor:"canister_id"`
	MethodName    string `cbor:"method_name"`
	Arg           []byte `cbor:"arg"`
	IngressExpiry uint64 `cbor:"ingress_expiry"`
}

type envelope struct {
	Content envelopeContent `cbor:"content"`
}

// buildEnvelope frames a call into the CBOR wire envelope. The sender is
// always the anonymous principal.
func buildEnvelope(kind CallKind, canisterID []byte, method string, arg []byte, issuedAt time.Time) ([]byte, error) {
	env := envelope{
		Content: envelopeContent{
			RequestType:   string(kind),
			Sender:        anonymousPrincipal,
			CanisterID:    canisterID,
			MethodName:    method,
			Arg:           arg,
			IngressExpiry: uint64(issuedAt.Add(ingressExpiryWindow).UnixNano()),
		},
	}
	data, err := cbor.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	return data, nil
}
