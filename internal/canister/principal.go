// ABOUTME: Principal handling: the anonymous sender credential and canister-id text decoding.
// ABOUTME: Text form is CRC-32 prefix + raw bytes, base32 lowercase, dash-grouped by five.

package canister

import (
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"
)

// anonymousPrincipal is the anonymous sender credential. All calls go out
// unsigned under this identity.
var anonymousPrincipal = []byte{0x04}

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// principalBytes decodes the textual canister id into its binary principal
// form for the envelope. Ids that do not parse degrade to the raw bytes of
// the text, mirroring the resolver's no-error contract; the gateway rejects
// them with a descriptive message instead of the client guessing.
func principalBytes(text string) []byte {
	compact := strings.ToUpper(strings.ReplaceAll(text, "-", ""))
	decoded, err := principalEncoding.DecodeString(compact)
	if err != nil || len(decoded) < 4 {
		return []byte(text)
	}
	sum := binary.BigEndian.Uint32(decoded[:4])
	body := decoded[4:]
	if crc32.ChecksumIEEE(body) != sum {
		return []byte(text)
	}
	return body
}

// principalText encodes binary principal bytes into the canonical text form.
func principalText(body []byte) string {
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(body))
	copy(buf[4:], body)
	s := strings.ToLower(principalEncoding.EncodeToString(buf))

	var b strings.Builder
	for i, r := range s {
		if i > 0 && i%5 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
