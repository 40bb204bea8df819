package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEncode_NullDistinctFromEmptyString(t *testing.T) {
	withNull := Key{String("Toys"), Null{}}
	withEmpty := Key{String("Toys"), String("")}
	assert.NotEqual(t, withNull.Encode(), withEmpty.Encode())
}

func TestKeyEncode_TypeTagged(t *testing.T) {
	// Int(1) and String("1") must not collide.
	assert.NotEqual(t, Key{Int(1)}.Encode(), Key{String("1")}.Encode())
}

func TestKeyEncode_ComponentBoundaries(t *testing.T) {
	// ("ab", "c") and ("a", "bc") must encode differently.
	assert.NotEqual(t,
		Key{String("ab"), String("c")}.Encode(),
		Key{String("a"), String("bc")}.Encode())
}

func TestKeyEncode_SeparatorInComponentCannotShiftBoundary(t *testing.T) {
	// A component containing the separator byte plus a forged type tag must
	// not collide with the tuple it imitates.
	a := Key{String("A\x1fs:B"), String("C")}
	b := Key{String("A"), String("B\x1fs:C")}
	assert.NotEqual(t, a.Encode(), b.Encode())
}

func TestKeyEncode_BackslashInComponentCannotShiftBoundary(t *testing.T) {
	a := Key{String(`A\`), String("B")}
	b := Key{String("A"), String(`\B`)}
	assert.NotEqual(t, a.Encode(), b.Encode())
}

func TestKeyEncode_NFCNormalized(t *testing.T) {
	// "é" precomposed vs combining sequence - same key after NFC.
	precomposed := Key{String("café")}
	combining := Key{String("café")}
	assert.Equal(t, precomposed.Encode(), combining.Encode())
}

func TestKeyEqual(t *testing.T) {
	a := Key{String("Electronics"), Int(2023)}
	b := Key{String("Electronics"), Int(2023)}
	c := Key{String("Electronics"), Int(2024)}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(a[:1]))
}
