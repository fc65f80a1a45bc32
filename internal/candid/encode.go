// ABOUTME: Candid argument encoder: type table construction plus value serialization.
// ABOUTME: One canonical encoding per logical value; mixed or unmappable values fail whole.

package candid

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
)

// Candid wire type codes. Composite types additionally get an
// index in the type table; primitives are referenced by their negative code.
const (
	codeNull      int64 = -1
	codeBool      int64 = -2
	codeNat       int64 = -3
	codeInt       int64 = -4
	codeText      int64 = -15
	codeEmpty     int64 = -17
	codeOpt       int64 = -18
	codeVec       int64 = -19
	codeRecord    int64 = -20
	codeVariant   int64 = -21
	codePrincipal int64 = -24
)

var didlMagic = []byte("DIDL")

// typeDesc describes the candid type of a value. Primitive types have only
// code set; opt/vec set elem; record/variant set fields in hash order.
type typeDesc struct {
	code   int64
	elem   *typeDesc
	fields []fieldDesc
}

type fieldDesc struct {
	hash uint32
	typ  *typeDesc
}

func prim(code int64) *typeDesc { return &typeDesc{code: code} }

// key returns a canonical string for structural type equality.
func (t *typeDesc) key() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

func (t *typeDesc) writeKey(b *strings.Builder) {
	fmt.Fprintf(b, "%d", t.code)
	if t.elem != nil {
		b.WriteByte('(')
		t.elem.writeKey(b)
		b.WriteByte(')')
	}
	if t.fields != nil {
		b.WriteByte('{')
		for _, f := range t.fields {
			fmt.Fprintf(b, "%d:", f.hash)
			f.typ.writeKey(b)
			b.WriteByte(';')
		}
		b.WriteByte('}')
	}
}

// typeOf derives the candid type of a value. Sequences must be homogeneous
// and records must not carry duplicate field hashes.
func typeOf(v Value) (*typeDesc, error) {
	switch val := v.(type) {
	case Null:
		return prim(codeNull), nil
	case Bool:
		return prim(codeBool), nil
	case Nat:
		return prim(codeNat), nil
	case Int:
		return prim(codeInt), nil
	case Text:
		return prim(codeText), nil
	case Principal:
		return prim(codePrincipal), nil
	case Vec:
		if len(val) == 0 {
			// Empty sequences carry the empty element type, which is a
			// subtype of every element type.
			return &typeDesc{code: codeVec, elem: prim(codeEmpty)}, nil
		}
		elem, err := typeOf(val[0])
		if err != nil {
			return nil, err
		}
		for i, item := range val[1:] {
			t, err := typeOf(item)
			if err != nil {
				return nil, err
			}
			if t.key() != elem.key() {
				return nil, fmt.Errorf("candid: mixed element types in sequence at index %d", i+1)
			}
		}
		return &typeDesc{code: codeVec, elem: elem}, nil
	case Opt:
		if val.Some == nil {
			return &typeDesc{code: codeOpt, elem: prim(codeNull)}, nil
		}
		elem, err := typeOf(val.Some)
		if err != nil {
			return nil, err
		}
		return &typeDesc{code: codeOpt, elem: elem}, nil
	case Record:
		sorted := val.sorted()
		fields := make([]fieldDesc, 0, len(sorted))
		var prev uint32
		for i, f := range sorted {
			if f.Value == nil {
				return nil, fmt.Errorf("candid: record field %q has no value", f.Name)
			}
			h := FieldHash(f.Name)
			if i > 0 && h == prev {
				return nil, fmt.Errorf("candid: duplicate record field hash for %q", f.Name)
			}
			prev = h
			ft, err := typeOf(f.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fieldDesc{hash: h, typ: ft})
		}
		return &typeDesc{code: codeRecord, fields: fields}, nil
	case Variant:
		if val.Value == nil {
			return nil, fmt.Errorf("candid: variant %q has no value", val.Tag)
		}
		ft, err := typeOf(val.Value)
		if err != nil {
			return nil, err
		}
		return &typeDesc{code: codeVariant, fields: []fieldDesc{{hash: FieldHash(val.Tag), typ: ft}}}, nil
	case nil:
		return nil, fmt.Errorf("candid: nil value")
	default:
		return nil, fmt.Errorf("candid: unsupported value type %T", v)
	}
}

// typeTable assigns indexes to composite types, children first, deduplicating
// structurally equal entries.
type typeTable struct {
	entries []*typeDesc
	index   map[string]int64
}

// ref returns the wire reference for t, registering composite types.
func (tt *typeTable) ref(t *typeDesc) int64 {
	if t.elem == nil && t.fields == nil {
		return t.code
	}
	k := t.key()
	if idx, ok := tt.index[k]; ok {
		return idx
	}
	// Register children first so the entry body can reference them.
	if t.elem != nil {
		tt.ref(t.elem)
	}
	for _, f := range t.fields {
		tt.ref(f.typ)
	}
	if idx, ok := tt.index[k]; ok {
		return idx
	}
	idx := int64(len(tt.entries))
	tt.entries = append(tt.entries, t)
	tt.index[k] = idx
	return idx
}

// emit writes the type table section.
func (tt *typeTable) emit(buf *bytes.Buffer) {
	writeULEB64(buf, uint64(len(tt.entries)))
	for _, t := range tt.entries {
		writeSLEB(buf, t.code)
		switch t.code {
		case codeOpt, codeVec:
			writeSLEB(buf, tt.ref(t.elem))
		case codeRecord, codeVariant:
			writeULEB64(buf, uint64(len(t.fields)))
			for _, f := range t.fields {
				writeULEB64(buf, uint64(f.hash))
				writeSLEB(buf, tt.ref(f.typ))
			}
		}
	}
}

// EncodeArgs serializes an argument list to candid binary form. Encoding the
// same logical arguments always yields byte-identical output.
func EncodeArgs(args []Value) ([]byte, error) {
	types := make([]*typeDesc, len(args))
	for i, arg := range args {
		t, err := typeOf(arg)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}

	tt := &typeTable{index: make(map[string]int64)}
	refs := make([]int64, len(types))
	for i, t := range types {
		refs[i] = tt.ref(t)
	}

	var buf bytes.Buffer
	buf.Write(didlMagic)
	tt.emit(&buf)
	writeULEB64(&buf, uint64(len(args)))
	for _, ref := range refs {
		writeSLEB(&buf, ref)
	}
	for i, arg := range args {
		if err := encodeValue(&buf, arg); err != nil {
			return nil, fmt.Errorf("encoding argument %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		if val {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil
	case Nat:
		writeULEB(buf, val.Big())
		return nil
	case Int:
		writeSLEBBig(buf, val.Big())
		return nil
	case Text:
		writeULEB64(buf, uint64(len(val)))
		buf.WriteString(string(val))
		return nil
	case Principal:
		// Transparent (id) form.
		buf.WriteByte(1)
		writeULEB64(buf, uint64(len(val)))
		buf.Write(val)
		return nil
	case Vec:
		writeULEB64(buf, uint64(len(val)))
		for _, item := range val {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		return nil
	case Opt:
		if val.Some == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return encodeValue(buf, val.Some)
	case Record:
		for _, f := range val.sorted() {
			if err := encodeValue(buf, f.Value); err != nil {
				return err
			}
		}
		return nil
	case Variant:
		// The encoded type carries exactly one alternative.
		writeULEB64(buf, 0)
		return encodeValue(buf, val.Value)
	default:
		return fmt.Errorf("candid: unsupported value type %T", v)
	}
}

// writeSLEBBig appends the signed LEB128 encoding of an unbounded integer.
func writeSLEBBig(buf *bytes.Buffer, v *big.Int) {
	n := new(big.Int).Set(v)
	mask := big.NewInt(0x7f)
	minusOne := big.NewInt(-1)
	chunk := new(big.Int)
	for {
		b := byte(chunk.And(n, mask).Uint64())
		n.Rsh(n, 7)
		if (n.Sign() == 0 && b&0x40 == 0) || (n.Cmp(minusOne) == 0 && b&0x40 != 0) {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}
