package table

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Value is a sealed interface representing the constrained cell types that may
// appear in a result table. Only Null, String, Int, Bool, and Decimal implement it.
// NO float64 - floats break determinism; monetary values use exact decimals.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents a missing value (e.g., a fact row with no promotion).
// Using an explicit type ensures all cells satisfy the sealed interface.
type Null struct{}

func (Null) value() {}

// String represents a text value (category names, weather labels, labels
// produced by the classifier).
type String string

func (String) value() {}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) value() {}

// Bool represents a boolean value (e.g., the epidemic flag).
type Bool bool

func (Bool) value() {}

// Decimal represents an exact decimal value. Monetary sums and averages are
// carried at full precision and quantized to 2 places only at the output
// boundary; intermediate rounding is a correctness bug.
type Decimal struct {
	D *apd.Decimal
}

func (Decimal) value() {}

// decCtx is the arithmetic context for all decimal computation.
// 34 digits matches IEEE 754 decimal128 and is far beyond what summed
// sales figures require.
var decCtx = apd.BaseContext.WithPrecision(34)

// NewDecimal wraps an apd.Decimal as a table value.
func NewDecimal(d *apd.Decimal) Decimal {
	return Decimal{D: d}
}

// NewDecimalInt64 creates a Decimal from an integer.
func NewDecimalInt64(n int64) Decimal {
	return Decimal{D: apd.New(n, 0)}
}

// ParseDecimal parses a decimal literal ("12.49"). Returns an error for
// anything that is not a finite decimal number.
func ParseDecimal(s string) (Decimal, error) {
	d, cond, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	if cond.Any() || d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("parse decimal %q: not a finite decimal", s)
	}
	return Decimal{D: d}, nil
}

// Round2 quantizes to 2 decimal places using half-even rounding.
// This is the ONLY place rounding happens; callers apply it at the display
// boundary, never before later arithmetic.
func (d Decimal) Round2() Decimal {
	out := new(apd.Decimal)
	// Quantize cannot fail for finite inputs at this precision.
	_, _ = decCtx.Quantize(out, d.D, -2)
	return Decimal{D: out}
}

// Add returns d + other at full precision.
func (d Decimal) Add(other Decimal) Decimal {
	out := new(apd.Decimal)
	_, _ = decCtx.Add(out, d.D, other.D)
	return Decimal{D: out}
}

// Sub returns d - other at full precision.
func (d Decimal) Sub(other Decimal) Decimal {
	out := new(apd.Decimal)
	_, _ = decCtx.Sub(out, d.D, other.D)
	return Decimal{D: out}
}

// Mul returns d * other at full precision.
func (d Decimal) Mul(other Decimal) Decimal {
	out := new(apd.Decimal)
	_, _ = decCtx.Mul(out, d.D, other.D)
	return Decimal{D: out}
}

// DivInt divides by an integer count (used for window and partition means).
// Panics on n == 0; callers guarantee non-empty frames.
func (d Decimal) DivInt(n int64) Decimal {
	if n == 0 {
		panic("table: division by zero count")
	}
	out := new(apd.Decimal)
	_, _ = decCtx.Quo(out, d.D, apd.New(n, 0))
	return Decimal{D: out}
}

// Cmp three-way compares two decimals (-1, 0, +1).
func (d Decimal) Cmp(other Decimal) int {
	return d.D.Cmp(other.D)
}

// Compare defines a total order over values of the same kind.
// Null sorts before any non-null value; values of mismatched kinds compare
// by kind rank so sorting never panics on heterogeneous columns.
func Compare(a, b Value) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case Null:
		return 0
	case String:
		bv := b.(String)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case Int:
		bv := b.(Int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case Bool:
		bv := b.(Bool)
		switch {
		case !bool(av) && bool(bv):
			return -1
		case bool(av) && !bool(bv):
			return 1
		}
		return 0
	case Decimal:
		return av.Cmp(b.(Decimal))
	}
	panic(fmt.Sprintf("table: unknown value type %T", a))
}

// Equal reports whether two values are equal under Compare.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// IsNull reports whether a value is the Null sentinel.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

func kindRank(v Value) int {
	switch v.(type) {
	case Null:
		return 0
	case Bool:
		return 1
	case Int:
		return 2
	case Decimal:
		return 3
	case String:
		return 4
	}
	panic(fmt.Sprintf("table: unknown value type %T", v))
}

// Format renders a value for display and canonical key encoding.
// Decimals render in plain (non-scientific) notation.
func Format(v Value) string {
	switch val := v.(type) {
	case Null:
		return ""
	case String:
		return string(val)
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Decimal:
		return val.D.Text('f')
	}
	panic(fmt.Sprintf("table: unknown value type %T", v))
}
