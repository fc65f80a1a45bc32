// Package canister implements the client for the governance canister behind
// an HTTP boundary gateway.
//
// # Call path
//
// Each public operation builds its candid argument value, wraps it in a CBOR
// call envelope with an anonymous sender and a five minute ingress expiry,
// and posts it to {origin}/api/v2/canister/{id}/{query|call}. Replies come
// back as a CBOR envelope that is either "replied" (candid result bytes) or
// "rejected" (code plus message). Results that use the Ok/Err variant
// convention are unwrapped; plain results pass through unchanged.
//
// # Local mode
//
// Endpoints whose origin host is loopback resolve to local mode and route
// every operation through a stateless mock responder, so the agent can run
// without a reachable gateway. The mock never touches the transport.
//
// # Failure taxonomy
//
// All failures surface as one of the typed errors in this package
// (EncodingError, TransportTimeout, TransportError, DecodingError,
// CanisterRejection, ApplicationError), matchable with errors.As. A failed
// call never poisons the client; it stays usable for subsequent calls.
package canister
