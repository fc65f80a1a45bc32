// ABOUTME: Candid field-name hashing and the reverse lookup table for decoding.
// ABOUTME: Hash is h = h*223 + byte over the UTF-8 name, mod 2^32.

package candid

import "strconv"

// FieldHash returns the candid hash of a record field or variant tag name.
func FieldHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*223 + uint32(name[i])
	}
	return h
}

// knownFieldNames lists every field name and variant tag the governance
// interface uses, so decoded records come back with readable names.
var knownFieldNames = []string{
	"Ok",
	"Err",
	"active",
	"count",
	"created_at",
	"creator",
	"description",
	"duration_hours",
	"ends_at",
	"id",
	"option",
	"options",
	"proposalId",
	"proposal_id",
	"request",
	"status",
	"title",
	"total_votes",
	"voter_id",
	"votes",
}

var hashToName = func() map[uint32]string {
	m := make(map[uint32]string, len(knownFieldNames))
	for _, name := range knownFieldNames {
		m[FieldHash(name)] = name
	}
	return m
}()

// fieldName resolves a wire hash to a name, falling back to the decimal
// representation of the hash for fields outside the known set.
func fieldName(hash uint32) string {
	if name, ok := hashToName[hash]; ok {
		return name
	}
	return strconv.FormatUint(uint64(hash), 10)
}
