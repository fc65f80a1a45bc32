// ABOUTME: Value model for the Candid subset: nat, int, bool, text, opt, vec, record, variant, principal.
// ABOUTME: Values are built by the dispatcher per call and decoded from reply bytes.

package candid

import (
	"fmt"
	"math/big"
	"sort"
)

// Value is a Candid value. The concrete types in this package are the only
// implementations.
type Value interface {
	candidValue()
}

// Null is the candid null value.
type Null struct{}

// Bool is a candid bool.
type Bool bool

// Text is a candid text value.
type Text string

// Nat is an unbounded unsigned integer. The zero value is 0.
type Nat struct {
	big *big.Int
}

// NatOf returns a Nat holding the given unsigned value.
func NatOf(v uint64) Nat {
	return Nat{big: new(big.Int).SetUint64(v)}
}

// NatFromBig returns a Nat holding the given big integer. The value must be
// non-negative.
func NatFromBig(v *big.Int) (Nat, error) {
	if v == nil || v.Sign() < 0 {
		return Nat{}, fmt.Errorf("candid: nat must be non-negative, got %v", v)
	}
	return Nat{big: new(big.Int).Set(v)}, nil
}

// Big returns a copy of the underlying integer.
func (n Nat) Big() *big.Int {
	if n.big == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n.big)
}

// Uint64 returns the value as a uint64 and whether it fits.
func (n Nat) Uint64() (uint64, bool) {
	if n.big == nil {
		return 0, true
	}
	if !n.big.IsUint64() {
		return 0, false
	}
	return n.big.Uint64(), true
}

func (n Nat) String() string {
	if n.big == nil {
		return "0"
	}
	return n.big.String()
}

// Int is an unbounded signed integer.
type Int struct {
	big *big.Int
}

// IntOf returns an Int holding the given value.
func IntOf(v int64) Int {
	return Int{big: big.NewInt(v)}
}

// Big returns a copy of the underlying integer.
func (i Int) Big() *big.Int {
	if i.big == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.big)
}

// Vec is an ordered sequence. All items must share one candid type; the
// encoder rejects mixed sequences. An empty Vec encodes with the empty
// element type, which every consumer accepts.
type Vec []Value

// TextVec builds a Vec of text values, preserving order.
func TextVec(items []string) Vec {
	v := make(Vec, len(items))
	for i, s := range items {
		v[i] = Text(s)
	}
	return v
}

// Opt is an optional value. A nil Some means none.
type Opt struct {
	Some Value
}

// Field is a named record member.
type Field struct {
	Name  string
	Value Value
}

// Record is a set of named fields. Encoding order is by field hash, so the
// builder order does not matter.
type Record []Field

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// sorted returns the fields in ascending hash order without mutating r.
func (r Record) sorted() []Field {
	fields := make([]Field, len(r))
	copy(fields, r)
	sort.Slice(fields, func(i, j int) bool {
		return FieldHash(fields[i].Name) < FieldHash(fields[j].Name)
	})
	return fields
}

// Variant is a tagged union holding exactly one alternative.
type Variant struct {
	Tag   string
	Value Value
}

// Principal is a raw principal identifier.
type Principal []byte

func (Null) candidValue()      {}
func (Bool) candidValue()      {}
func (Text) candidValue()      {}
func (Nat) candidValue()       {}
func (Int) candidValue()       {}
func (Vec) candidValue()       {}
func (Opt) candidValue()       {}
func (Record) candidValue()    {}
func (Variant) candidValue()   {}
func (Principal) candidValue() {}
