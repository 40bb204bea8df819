package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticedata/lattice/internal/table"
)

var pricePosition = Labels{Higher: "HIGHER", Lower: "LOWER", Equal: "EQUAL"}

func TestClassify_ThreeWay(t *testing.T) {
	d := func(s string) table.Value {
		v, err := table.ParseDecimal(s)
		assert.NoError(t, err)
		return v
	}

	assert.Equal(t, table.String("HIGHER"), Classify(d("10.01"), d("10"), pricePosition))
	assert.Equal(t, table.String("LOWER"), Classify(d("9.99"), d("10"), pricePosition))
	assert.Equal(t, table.String("EQUAL"), Classify(d("10"), d("10"), pricePosition))
}

func TestClassify_EqualBranchReachableAfterRounding(t *testing.T) {
	// 10.00 and 10 differ in exponent but are the same number.
	a, _ := table.ParseDecimal("10.00")
	b, _ := table.ParseDecimal("10")
	assert.Equal(t, table.String("EQUAL"), Classify(a, b, pricePosition))
}

func TestClassify_MixedNumericKinds(t *testing.T) {
	d, _ := table.ParseDecimal("2.5")
	assert.Equal(t, table.String("LOWER"), Classify(table.Int(2), d, pricePosition))
	assert.Equal(t, table.String("HIGHER"), Classify(table.Int(3), d, pricePosition))
}

func TestClassify_NullFallsThroughToEqual(t *testing.T) {
	d, _ := table.ParseDecimal("10")
	assert.Equal(t, table.String("EQUAL"), Classify(table.Null{}, d, pricePosition))
	assert.Equal(t, table.String("EQUAL"), Classify(d, table.Null{}, pricePosition))
	assert.Equal(t, table.String("EQUAL"), Classify(table.Null{}, table.Null{}, pricePosition))
}

func TestClassify_TotalAndExhaustive(t *testing.T) {
	// Exactly one of the three labels for any pair.
	values := []table.Value{table.Int(-1), table.Int(0), table.Int(1), table.Null{}}
	for _, a := range values {
		for _, b := range values {
			got := string(Classify(a, b, pricePosition))
			assert.Contains(t, []string{"HIGHER", "LOWER", "EQUAL"}, got)
		}
	}
}
