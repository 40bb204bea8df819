package engine

import (
	"fmt"

	"github.com/latticedata/lattice/internal/catalog"
	"github.com/latticedata/lattice/internal/dataset"
	"github.com/latticedata/lattice/internal/table"
)

// KeyFunc maps a fact row to its group-key tuple. Tuples compare equal only
// if all components are equal; Null is a distinct group value.
type KeyFunc func(f *dataset.Fact) table.Key

// Aggregate groups rows by key and reduces each group to the requested
// measures in a single pass, with one group membership test per row. All
// measures for a group are computed over the exact same row set.
//
// The result has one row per distinct key tuple, columns = keyCols followed
// by measure names, in first-seen group order. An empty input yields an
// empty table, not an error.
func Aggregate(facts []dataset.Fact, keyCols []string, keyFn KeyFunc, measures []catalog.Measure) (*table.Table, error) {
	cols := append(append([]string(nil), keyCols...), measureNames(measures)...)
	out := table.New(cols...)

	type group struct {
		key  table.Key
		accs []accumulator
	}
	index := make(map[string]*group)
	var order []*group

	for i := range facts {
		f := &facts[i]
		key := keyFn(f)
		enc := key.Encode()
		g, ok := index[enc]
		if !ok {
			g = &group{key: key, accs: make([]accumulator, len(measures))}
			for j, m := range measures {
				acc, err := newAccumulator(m)
				if err != nil {
					return nil, err
				}
				g.accs[j] = acc
			}
			index[enc] = g
			order = append(order, g)
		}
		for _, acc := range g.accs {
			acc.add(f)
		}
	}

	for _, g := range order {
		row := make(table.Row, len(cols))
		for i, col := range keyCols {
			row[col] = g.key[i]
		}
		for j, m := range measures {
			row[m.Name] = g.accs[j].result()
		}
		out.Append(row)
	}
	return out, nil
}

func measureNames(measures []catalog.Measure) []string {
	names := make([]string, len(measures))
	for i, m := range measures {
		names[i] = m.Name
	}
	return names
}

// accumulator reduces one measure over one group's rows.
type accumulator interface {
	add(f *dataset.Fact)
	result() table.Value
}

func newAccumulator(m catalog.Measure) (accumulator, error) {
	switch m.Kind {
	case catalog.MeasureCount:
		return &countAcc{}, nil
	case catalog.MeasureSum:
		if isIntField(m.Field) {
			return &intSumAcc{field: m.Field}, nil
		}
		return &decSumAcc{field: m.Field, sum: table.NewDecimalInt64(0)}, nil
	case catalog.MeasureSumProduct:
		return &productSumAcc{a: m.Field, b: m.Field2, sum: table.NewDecimalInt64(0)}, nil
	case catalog.MeasureAvg:
		return &avgAcc{field: m.Field, sum: table.NewDecimalInt64(0)}, nil
	default:
		return nil, fmt.Errorf("unknown measure kind %q", m.Kind)
	}
}

type countAcc struct{ n int64 }

func (a *countAcc) add(*dataset.Fact)   { a.n++ }
func (a *countAcc) result() table.Value { return table.Int(a.n) }

type intSumAcc struct {
	field string
	sum   int64
}

func (a *intSumAcc) add(f *dataset.Fact) {
	v, _ := intField(f, a.field)
	a.sum += v
}
func (a *intSumAcc) result() table.Value { return table.Int(a.sum) }

type decSumAcc struct {
	field string
	sum   table.Decimal
}

func (a *decSumAcc) add(f *dataset.Fact) {
	if v, ok := decField(f, a.field); ok {
		a.sum = a.sum.Add(v)
	}
}
func (a *decSumAcc) result() table.Value { return a.sum }

// productSumAcc sums field * field2 per row (e.g., revenue = price x units).
type productSumAcc struct {
	a, b string
	sum  table.Decimal
}

func (p *productSumAcc) add(f *dataset.Fact) {
	av, aok := decField(f, p.a)
	bv, bok := decField(f, p.b)
	if aok && bok {
		p.sum = p.sum.Add(av.Mul(bv))
	}
}
func (p *productSumAcc) result() table.Value { return p.sum }

// avgAcc averages over the rows where the field is present. SQL AVG
// semantics: nulls contribute nothing; an all-null group yields Null.
type avgAcc struct {
	field string
	sum   table.Decimal
	n     int64
}

func (a *avgAcc) add(f *dataset.Fact) {
	if v, ok := decField(f, a.field); ok {
		a.sum = a.sum.Add(v)
		a.n++
	}
}

func (a *avgAcc) result() table.Value {
	if a.n == 0 {
		return table.Null{}
	}
	return a.sum.DivInt(a.n)
}

func isIntField(name string) bool {
	switch name {
	case "units_sold", "units_ordered", "inventory_level", "demand":
		return true
	}
	return false
}

func intField(f *dataset.Fact, name string) (int64, bool) {
	switch name {
	case "units_sold":
		return f.UnitsSold, true
	case "units_ordered":
		return f.UnitsOrdered, true
	case "inventory_level":
		return f.InventoryLevel, true
	case "demand":
		return f.Demand, true
	}
	return 0, false
}

// decField resolves any measure field as a decimal. Integer fields convert
// exactly; competitor_price reports ok=false when the row has none.
func decField(f *dataset.Fact, name string) (table.Decimal, bool) {
	if v, ok := intField(f, name); ok {
		return table.NewDecimalInt64(v), true
	}
	switch name {
	case "price":
		return table.NewDecimal(f.Price), true
	case "discount":
		return table.NewDecimal(f.Discount), true
	case "competitor_price":
		if f.CompetitorPrice == nil {
			return table.Decimal{}, false
		}
		return table.NewDecimal(f.CompetitorPrice), true
	}
	return table.Decimal{}, false
}
