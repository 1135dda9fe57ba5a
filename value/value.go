// Package value implements the runtime's tagged Value union and the
// single heap-allocated object kind, ObjectString.
package value

import (
	"fmt"
	"io"
	"strconv"
)

// Kind identifies which variant of a Value is populated.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is a tagged union of the four runtime types: nil, bool, number
// (float64) and object (a heap ObjectString reference). Only the field
// matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Obj    *ObjectString
}

// Nil is the singleton nil value.
var Nil = Value{Kind: KindNil}

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewNumber wraps a float64.
func NewNumber(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// NewObject wraps a heap object reference.
func NewObject(o *ObjectString) Value { return Value{Kind: KindObject, Obj: o} }

// ObjectString is the one heap-allocated value kind the core supports:
// an owned (or, before escape handling, borrowed) run of bytes.
//
// Next links every ObjectString into the VM's intrusive allocation
// list; it is not part of the value's identity.
type ObjectString struct {
	Length  int
	Owned   bool
	Bytes   []byte
	Next    *ObjectString
}

// NewOwnedString allocates an ObjectString that owns a copy of s.
func NewOwnedString(s string) *ObjectString {
	b := make([]byte, len(s))
	copy(b, s)
	return &ObjectString{Length: len(b), Owned: true, Bytes: b}
}

// NewBorrowedString wraps a source slice without copying it; the
// lifetime of b must not outlive the source buffer it slices. The
// compiler does not use it: string literals are copied with
// NewOwnedString.
func NewBorrowedString(b []byte) *ObjectString {
	return &ObjectString{Length: len(b), Owned: false, Bytes: b}
}

// Equal compares two strings by content: length first, then
// byte-by-byte.
func (o *ObjectString) Equal(other *ObjectString) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil {
		return false
	}
	if o.Length != other.Length {
		return false
	}
	for i := 0; i < o.Length; i++ {
		if o.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

func (o *ObjectString) String() string { return string(o.Bytes) }

// IsTruthy reports whether v is truthy. nil and false are the only
// falsy values; everything else, including 0 and the empty string, is
// truthy.
func IsTruthy(v Value) bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements CLA's == operator. Cross-type comparisons are
// always false. Numbers compare with ordinary float64 == semantics
// (so NaN != NaN, and -0 == 0). Strings compare by content.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObject:
		return a.Obj.Equal(b.Obj)
	default:
		return false
	}
}

// TypeName returns the runtime type name used in error messages.
func TypeName(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return "string"
	default:
		return "unknown"
	}
}

// Print writes v's textual representation to w: nil -> "nil",
// booleans -> "true"/"false", numbers -> compact %g-style decimal,
// strings -> raw content with no surrounding quotes.
func Print(w io.Writer, v Value) {
	switch v.Kind {
	case KindNil:
		fmt.Fprint(w, "nil")
	case KindBool:
		if v.Bool {
			fmt.Fprint(w, "true")
		} else {
			fmt.Fprint(w, "false")
		}
	case KindNumber:
		fmt.Fprint(w, formatNumber(v.Number))
	case KindObject:
		fmt.Fprint(w, v.Obj.String())
	}
}

// formatNumber renders a float64 like C's "%.14g": a compact decimal
// with at most 14 significant digits and no unnecessary trailing zeroes.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', 14, 64)
}

// String renders v for debug tracing and disassembly listings.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindObject:
		return v.Obj.String()
	default:
		return "<invalid value>"
	}
}
