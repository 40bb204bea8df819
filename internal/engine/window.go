package engine

import (
	"github.com/latticedata/lattice/internal/table"
)

// TrailingAvg computes a trailing moving average over rows ordered by
// orderBy ascending. For the row at sorted position i, the frame is rows
// max(0, i-width+1)..i - current plus up to width-1 preceding. The first
// rows therefore average over fewer values (a frame that grows until it
// reaches full width), never null and never an error.
//
// Ordering ties are broken deterministically by insertion order (the sort is
// stable). Means are computed on exact decimals; only the output column is
// rounded to 2 places.
//
// The input table is not modified; the result is an annotated copy.
func TrailingAvg(t *table.Table, orderBy []table.SortKey, measure string, width int, output string) *table.Table {
	out := t.Clone()
	out.Sort(orderBy)
	out.AddColumn(output)

	for i, row := range out.Rows {
		start := i - width + 1
		if start < 0 {
			start = 0
		}
		sum := table.NewDecimalInt64(0)
		var n int64
		for j := start; j <= i; j++ {
			if v, ok := asDecimal(out.Rows[j].Get(measure)); ok {
				sum = sum.Add(v)
				n++
			}
		}
		if n == 0 {
			row[output] = table.Null{}
			continue
		}
		row[output] = sum.DivInt(n).Round2()
	}
	return out
}

// PartitionAvg computes, for every row, the mean of measure across all rows
// sharing the row's partition key (including itself), independent of any
// ordering. Every row in a partition carries the identical average; the diff
// column is the row's deviation from it. Both output columns hold exact
// unrounded decimals so downstream comparisons (the benchmark classifier)
// run at full precision; display rounding happens once at the end of the
// report pipeline.
//
// This is a full-partition scan broadcast back to each row, not a running
// window.
func PartitionAvg(t *table.Table, partition []string, measure, avgOutput, diffOutput string) *table.Table {
	out := t.Clone()
	out.AddColumn(avgOutput)
	out.AddColumn(diffOutput)

	type agg struct {
		sum table.Decimal
		n   int64
	}
	totals := make(map[string]*agg)

	partKey := func(row table.Row) string {
		key := make(table.Key, len(partition))
		for i, col := range partition {
			key[i] = row.Get(col)
		}
		return key.Encode()
	}

	for _, row := range out.Rows {
		k := partKey(row)
		a, ok := totals[k]
		if !ok {
			a = &agg{sum: table.NewDecimalInt64(0)}
			totals[k] = a
		}
		if v, ok := asDecimal(row.Get(measure)); ok {
			a.sum = a.sum.Add(v)
			a.n++
		}
	}

	for _, row := range out.Rows {
		a := totals[partKey(row)]
		if a.n == 0 {
			row[avgOutput] = table.Null{}
			row[diffOutput] = table.Null{}
			continue
		}
		avg := a.sum.DivInt(a.n)
		row[avgOutput] = avg
		if v, ok := asDecimal(row.Get(measure)); ok {
			row[diffOutput] = v.Sub(avg)
		} else {
			row[diffOutput] = table.Null{}
		}
	}
	return out
}

// asDecimal widens a numeric cell to an exact decimal. Null and non-numeric
// cells report ok=false.
func asDecimal(v table.Value) (table.Decimal, bool) {
	switch val := v.(type) {
	case table.Decimal:
		return val, true
	case table.Int:
		return table.NewDecimalInt64(int64(val)), true
	}
	return table.Decimal{}, false
}
