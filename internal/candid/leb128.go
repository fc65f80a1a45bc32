// ABOUTME: LEB128 primitives shared by the encoder and decoder.
// ABOUTME: Unsigned form carries unbounded naturals; signed form carries type codes.

package candid

import (
	"bytes"
	"fmt"
	"math/big"
)

// maxLEBBytes bounds a single LEB128 group. 64 bytes is 448 value bits,
// far beyond anything the governance interface transmits.
const maxLEBBytes = 64

// writeULEB appends the unsigned LEB128 encoding of v.
func writeULEB(buf *bytes.Buffer, v *big.Int) {
	if v.Sign() == 0 {
		buf.WriteByte(0)
		return
	}
	n := new(big.Int).Set(v)
	low := new(big.Int)
	mask := big.NewInt(0x7f)
	for n.Sign() != 0 {
		b := byte(low.And(n, mask).Uint64())
		n.Rsh(n, 7)
		if n.Sign() != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

// writeULEB64 appends the unsigned LEB128 encoding of v.
func writeULEB64(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

// writeSLEB appends the signed LEB128 encoding of v.
func writeSLEB(buf *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

// readULEB reads an unsigned LEB128 value of arbitrary width.
func readULEB(r *bytes.Reader) (*big.Int, error) {
	result := new(big.Int)
	shift := uint(0)
	for i := 0; ; i++ {
		if i >= maxLEBBytes {
			return nil, fmt.Errorf("candid: leb128 value exceeds %d bytes", maxLEBBytes)
		}
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("candid: truncated leb128 value")
		}
		chunk := new(big.Int).SetUint64(uint64(b & 0x7f))
		result.Or(result, chunk.Lsh(chunk, shift))
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// readULEB64 reads an unsigned LEB128 value that must fit in a uint64.
func readULEB64(r *bytes.Reader) (uint64, error) {
	v, err := readULEB(r)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("candid: leb128 value %v overflows uint64", v)
	}
	return v.Uint64(), nil
}

// readSLEB reads a signed LEB128 value that must fit in an int64.
func readSLEB(r *bytes.Reader) (int64, error) {
	var result int64
	shift := uint(0)
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, fmt.Errorf("candid: sleb128 value exceeds int64")
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("candid: truncated sleb128 value")
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
	}
}
