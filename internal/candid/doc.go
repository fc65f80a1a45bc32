// Package candid implements the subset of the Candid binary format needed to
// talk to the governance canister: the DIDL magic header, a type table, and
// values of type nat, int, bool, text, opt, vec, record, variant and
// principal.
//
// # Determinism
//
// Encoding is a pure function of the logical value. Record fields are emitted
// in ascending field-hash order and numeric leaves are unbounded naturals
// (LEB128 over big.Int), so the same argument value always produces
// byte-identical output. Callers rely on this for safe retries.
//
// # Field names
//
// Candid transmits record field names as 32-bit hashes. The decoder maps
// hashes back to names through a fixed table of the field names used by the
// governance interface; unknown hashes surface as their decimal string.
package candid
