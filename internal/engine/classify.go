package engine

import (
	"github.com/latticedata/lattice/internal/table"
)

// Labels holds the three outputs of a classification rule.
type Labels struct {
	Higher string
	Lower  string
	Equal  string
}

// Classify is a pure three-way comparison: a > b yields Higher, a < b yields
// Lower, otherwise Equal. Total and exhaustive - exactly one label is
// returned for any pair of inputs, and the Equal branch is reachable on
// exact equality at whatever precision the inputs carry.
//
// A comparison involving null falls through to Equal, matching the CASE
// WHEN a > b ... WHEN a < b ... ELSE shape the rule reproduces.
func Classify(a, b table.Value, labels Labels) table.String {
	av, aok := asDecimal(a)
	bv, bok := asDecimal(b)
	if !aok || !bok {
		return table.String(labels.Equal)
	}
	switch av.Cmp(bv) {
	case 1:
		return table.String(labels.Higher)
	case -1:
		return table.String(labels.Lower)
	default:
		return table.String(labels.Equal)
	}
}
