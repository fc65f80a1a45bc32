// ABOUTME: Tests for principal text decoding, the checksum guard, and the raw-bytes fallback.

package canister

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalBytes_RoundTrip(t *testing.T) {
	body := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x07, 0x01, 0x01}
	text := principalText(body)
	assert.Equal(t, body, principalBytes(text))
}

func TestPrincipalBytes_WellKnownID(t *testing.T) {
	// The local replica's default id used throughout the docs.
	got := principalBytes("rdmx6-jaaaa-aaaaa-aaadq-cai")
	require.NotEqual(t, []byte("rdmx6-jaaaa-aaaaa-aaadq-cai"), got, "well-formed id must decode, not fall back")
	assert.Equal(t, "rdmx6-jaaaa-aaaaa-aaadq-cai", principalText(got))
}

func TestPrincipalBytes_FallbackOnGarbage(t *testing.T) {
	assert.Equal(t, []byte("not-base32-!!"), principalBytes("not-base32-!!"))
}

func TestPrincipalBytes_FallbackOnBadChecksum(t *testing.T) {
	body := []byte{1, 2, 3, 4, 5}
	text := principalText(body)
	// Flip one payload character so the checksum no longer matches.
	corrupted := []byte(text)
	last := len(corrupted) - 1
	if corrupted[last] == 'a' {
		corrupted[last] = 'b'
	} else {
		corrupted[last] = 'a'
	}
	assert.Equal(t, corrupted, principalBytes(string(corrupted)))
}

func TestAnonymousPrincipal(t *testing.T) {
	assert.Equal(t, []byte{0x04}, anonymousPrincipal)
}
