package table

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is a group-key tuple. Tuples compare equal only if all components are
// equal; Null is a distinct, stable component value, never collapsed with the
// empty string or zero.
type Key []Value

// Encode produces a canonical string encoding of the tuple, suitable as a map
// key during grouping.
//
// Properties:
//  1. Strings are NFC normalized so keys match regardless of the Unicode
//     representation the loader happened to produce.
//  2. Each component carries a type tag, so Int(1) and String("1") encode
//     differently, and Null differs from String("").
//  3. Components are joined with 0x1f (unit separator). Backslashes and
//     separator bytes inside string components are escaped first, so no data
//     string can forge a component boundary.
func (k Key) Encode() string {
	var sb strings.Builder
	for i, v := range k {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		switch v.(type) {
		case Null:
			sb.WriteString("n:")
		case String:
			sb.WriteString("s:")
			sb.WriteString(keyEscaper.Replace(norm.NFC.String(Format(v))))
			continue
		case Int:
			sb.WriteString("i:")
		case Bool:
			sb.WriteString("b:")
		case Decimal:
			sb.WriteString("d:")
		}
		sb.WriteString(Format(v))
	}
	return sb.String()
}

// keyEscaper keeps the separator unambiguous inside encoded keys: a raw 0x1f
// only ever marks a component boundary, because any 0x1f (or backslash) that
// arrived in the data is rewritten before joining. Non-string components
// format as ASCII digits and letters and need no escaping.
var keyEscaper = strings.NewReplacer(`\`, `\\`, "\x1f", `\x1f`)

// Equal reports whether two tuples are component-wise equal.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if !Equal(k[i], other[i]) {
			return false
		}
	}
	return true
}
