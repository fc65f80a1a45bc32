// ABOUTME: Candid reply decoder: parses the type table then reads values into the Value model.
// ABOUTME: Malformed input fails with a descriptive error; nothing is decoded partially.

package candid

import (
	"bytes"
	"fmt"
	"math/big"
)

// maxDepth bounds type nesting while decoding untrusted reply bytes.
const maxDepth = 64

// maxSeqItems bounds a single decoded sequence. The governance canister
// returns at most a page of proposals; anything larger is garbage.
const maxSeqItems = 1 << 20

type wireField struct {
	hash uint32
	ref  int64
}

type tableEntry struct {
	code   int64
	elem   int64
	fields []wireField
}

// DecodeArgs parses a candid binary argument list.
func DecodeArgs(data []byte) ([]Value, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(didlMagic))
	if _, err := r.Read(magic); err != nil || !bytes.Equal(magic, didlMagic) {
		return nil, fmt.Errorf("candid: missing DIDL magic")
	}

	table, err := readTypeTable(r)
	if err != nil {
		return nil, err
	}

	argc, err := readULEB64(r)
	if err != nil {
		return nil, fmt.Errorf("candid: reading argument count: %w", err)
	}
	if argc > uint64(r.Len())+1 {
		return nil, fmt.Errorf("candid: argument count %d exceeds input", argc)
	}
	refs := make([]int64, argc)
	for i := range refs {
		refs[i], err = readSLEB(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading argument type: %w", err)
		}
	}

	args := make([]Value, argc)
	for i, ref := range refs {
		v, err := decodeValue(r, ref, table, 0)
		if err != nil {
			return nil, fmt.Errorf("candid: decoding argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func readTypeTable(r *bytes.Reader) ([]tableEntry, error) {
	count, err := readULEB64(r)
	if err != nil {
		return nil, fmt.Errorf("candid: reading type table size: %w", err)
	}
	if count > uint64(r.Len()) {
		return nil, fmt.Errorf("candid: type table size %d exceeds input", count)
	}

	table := make([]tableEntry, count)
	for i := range table {
		code, err := readSLEB(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading type %d: %w", i, err)
		}
		entry := tableEntry{code: code}
		switch code {
		case codeOpt, codeVec:
			entry.elem, err = readSLEB(r)
			if err != nil {
				return nil, fmt.Errorf("candid: reading element type of type %d: %w", i, err)
			}
		case codeRecord, codeVariant:
			n, err := readULEB64(r)
			if err != nil {
				return nil, fmt.Errorf("candid: reading field count of type %d: %w", i, err)
			}
			if n > uint64(r.Len()) {
				return nil, fmt.Errorf("candid: field count %d of type %d exceeds input", n, i)
			}
			entry.fields = make([]wireField, n)
			for j := range entry.fields {
				h, err := readULEB64(r)
				if err != nil {
					return nil, fmt.Errorf("candid: reading field hash: %w", err)
				}
				if h > 0xffffffff {
					return nil, fmt.Errorf("candid: field hash %d out of range", h)
				}
				ref, err := readSLEB(r)
				if err != nil {
					return nil, fmt.Errorf("candid: reading field type: %w", err)
				}
				entry.fields[j] = wireField{hash: uint32(h), ref: ref}
			}
		default:
			return nil, fmt.Errorf("candid: unsupported composite type code %d", code)
		}
		table[i] = entry
	}
	return table, nil
}

func decodeValue(r *bytes.Reader, ref int64, table []tableEntry, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("candid: type nesting exceeds %d", maxDepth)
	}

	if ref < 0 {
		return decodePrimitive(r, ref)
	}
	if ref >= int64(len(table)) {
		return nil, fmt.Errorf("candid: type index %d out of range", ref)
	}

	entry := table[ref]
	switch entry.code {
	case codeOpt:
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("candid: truncated opt")
		}
		switch tag {
		case 0:
			return Opt{}, nil
		case 1:
			v, err := decodeValue(r, entry.elem, table, depth+1)
			if err != nil {
				return nil, err
			}
			return Opt{Some: v}, nil
		default:
			return nil, fmt.Errorf("candid: invalid opt tag %d", tag)
		}
	case codeVec:
		n, err := readULEB64(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading sequence length: %w", err)
		}
		if n > maxSeqItems || n > uint64(r.Len())+1 {
			return nil, fmt.Errorf("candid: sequence length %d exceeds input", n)
		}
		vec := make(Vec, n)
		for i := range vec {
			vec[i], err = decodeValue(r, entry.elem, table, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return vec, nil
	case codeRecord:
		rec := make(Record, len(entry.fields))
		for i, f := range entry.fields {
			v, err := decodeValue(r, f.ref, table, depth+1)
			if err != nil {
				return nil, err
			}
			rec[i] = Field{Name: fieldName(f.hash), Value: v}
		}
		return rec, nil
	case codeVariant:
		idx, err := readULEB64(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading variant index: %w", err)
		}
		if idx >= uint64(len(entry.fields)) {
			return nil, fmt.Errorf("candid: variant index %d out of range", idx)
		}
		alt := entry.fields[idx]
		v, err := decodeValue(r, alt.ref, table, depth+1)
		if err != nil {
			return nil, err
		}
		return Variant{Tag: fieldName(alt.hash), Value: v}, nil
	default:
		return nil, fmt.Errorf("candid: unsupported type code %d in table", entry.code)
	}
}

func decodePrimitive(r *bytes.Reader, code int64) (Value, error) {
	switch code {
	case codeNull, -16: // null, reserved: no value bytes
		return Null{}, nil
	case codeBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("candid: truncated bool")
		}
		switch b {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		default:
			return nil, fmt.Errorf("candid: invalid bool byte %d", b)
		}
	case codeNat:
		v, err := readULEB(r)
		if err != nil {
			return nil, err
		}
		n, err := NatFromBig(v)
		if err != nil {
			return nil, err
		}
		return n, nil
	case codeInt:
		v, err := readSLEBBig(r)
		if err != nil {
			return nil, err
		}
		return Int{big: v}, nil
	case codeText:
		n, err := readULEB64(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading text length: %w", err)
		}
		if n > uint64(r.Len()) {
			return nil, fmt.Errorf("candid: text length %d exceeds input", n)
		}
		buf := make([]byte, n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("candid: truncated text")
		}
		return Text(buf), nil
	case codePrincipal:
		form, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("candid: truncated principal")
		}
		if form != 1 {
			return nil, fmt.Errorf("candid: opaque principal references are not supported")
		}
		n, err := readULEB64(r)
		if err != nil {
			return nil, fmt.Errorf("candid: reading principal length: %w", err)
		}
		if n > uint64(r.Len()) {
			return nil, fmt.Errorf("candid: principal length %d exceeds input", n)
		}
		buf := make([]byte, n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("candid: truncated principal")
		}
		return Principal(buf), nil
	// Fixed-width numerics appear in replies from canisters that chose them;
	// they are widened to Nat/Int on decode.
	case -5, -6, -7, -8: // nat8..nat64
		width := natWidth(code)
		buf := make([]byte, width)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("candid: truncated nat%d", width*8)
		}
		var v uint64
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
		return NatOf(v), nil
	case -9, -10, -11, -12: // int8..int64
		width := natWidth(code + 4)
		buf := make([]byte, width)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("candid: truncated int%d", width*8)
		}
		var v uint64
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
		signed := int64(v)
		if width < 8 {
			shift := uint(64 - width*8)
			signed = int64(v<<shift) >> shift
		}
		return Int{big: big.NewInt(signed)}, nil
	default:
		return nil, fmt.Errorf("candid: unsupported primitive type code %d", code)
	}
}

// natWidth maps nat8/nat16/nat32/nat64 codes to byte widths.
func natWidth(code int64) int {
	switch code {
	case -5:
		return 1
	case -6:
		return 2
	case -7:
		return 4
	default:
		return 8
	}
}

// readSLEBBig reads a signed LEB128 value of arbitrary width.
func readSLEBBig(r *bytes.Reader) (*big.Int, error) {
	result := new(big.Int)
	shift := uint(0)
	for i := 0; ; i++ {
		if i >= maxLEBBytes {
			return nil, fmt.Errorf("candid: sleb128 value exceeds %d bytes", maxLEBBytes)
		}
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("candid: truncated sleb128 value")
		}
		chunk := new(big.Int).SetUint64(uint64(b & 0x7f))
		result.Or(result, chunk.Lsh(chunk, shift))
		shift += 7
		if b&0x80 == 0 {
			if b&0x40 != 0 {
				result.Sub(result, new(big.Int).Lsh(big.NewInt(1), shift))
			}
			return result, nil
		}
	}
}
