// ABOUTME: Typed failure taxonomy for canister calls.
// ABOUTME: Callers distinguish transport garbage from explicit canister rejections via errors.As.

package canister

import (
	"fmt"
	"time"

	"github.com/degov-labs/degov-oracle/internal/candid"
)

// EncodingError reports an argument value that could not be mapped to the
// canister's candid interface. Nothing was sent.
type EncodingError struct {
	Method string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding arguments for %s: %v", e.Method, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// TransportTimeout reports a call that exceeded its per-call deadline. The
// call is not retried; only the call that incurred the timeout is affected.
type TransportTimeout struct {
	Elapsed time.Duration
}

func (e *TransportTimeout) Error() string {
	return fmt.Sprintf("call timed out after %s", e.Elapsed.Round(time.Millisecond))
}

// TransportError reports a gateway response with an unexpected HTTP status.
// Body carries the response body verbatim.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// DecodingError reports reply bytes that could not be parsed, as distinct
// from a well-formed rejection.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding reply: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// CanisterRejection is an explicit reject from the network or canister,
// surfaced verbatim.
type CanisterRejection struct {
	Code    uint64
	Message string
}

func (e *CanisterRejection) Error() string {
	return fmt.Sprintf("canister rejected call (code %d): %s", e.Code, e.Message)
}

// ApplicationError is a decoded Err-tagged result payload: the canister
// executed the call and declined it at the application level.
type ApplicationError struct {
	Payload candid.Value
}

func (e *ApplicationError) Error() string {
	if msg, ok := e.Payload.(candid.Text); ok {
		return string(msg)
	}
	return fmt.Sprintf("application error: %v", e.Payload)
}
