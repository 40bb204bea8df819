package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedata/lattice/internal/table"
)

// monthlyTable builds a (year, month, revenue) table from int revenues
// starting at 2023-01.
func monthlyTable(revenues ...int64) *table.Table {
	tbl := table.New("year", "month", "revenue")
	year, month := int64(2023), int64(1)
	for _, rev := range revenues {
		tbl.Append(table.Row{
			"year":    table.Int(year),
			"month":   table.Int(month),
			"revenue": table.NewDecimalInt64(rev),
		})
		month++
		if month > 12 {
			month, year = 1, year+1
		}
	}
	return tbl
}

var monthOrder = []table.SortKey{{Column: "year"}, {Column: "month"}}

func TestTrailingAvg_GrowingFrame(t *testing.T) {
	// The canonical sequence: frames grow 1, 2, 3, 3, 3.
	out := TrailingAvg(monthlyTable(10, 20, 30, 40, 50), monthOrder, "revenue", 3, "moving_avg")

	want := []string{"10.00", "15.00", "20.00", "30.00", "40.00"}
	require.Equal(t, len(want), out.Len())
	for i, w := range want {
		assert.Equal(t, w, table.Format(out.Rows[i]["moving_avg"]), "row %d", i)
	}
}

func TestTrailingAvg_RoundsOnlyOutput(t *testing.T) {
	// (10+20+35)/3 = 21.666... -> 21.67; the revenue column stays exact.
	out := TrailingAvg(monthlyTable(10, 20, 35), monthOrder, "revenue", 3, "moving_avg")
	assert.Equal(t, "21.67", table.Format(out.Rows[2]["moving_avg"]))
	assert.Equal(t, "35", table.Format(out.Rows[2]["revenue"]))
}

func TestTrailingAvg_SortsYearBeforeMonth(t *testing.T) {
	// Dec 2023 must precede Jan 2024 even though 12 > 1.
	tbl := table.New("year", "month", "revenue")
	tbl.Append(table.Row{"year": table.Int(2024), "month": table.Int(1), "revenue": table.NewDecimalInt64(300)})
	tbl.Append(table.Row{"year": table.Int(2023), "month": table.Int(12), "revenue": table.NewDecimalInt64(100)})

	out := TrailingAvg(tbl, monthOrder, "revenue", 3, "moving_avg")
	assert.Equal(t, table.Int(2023), out.Rows[0]["year"])
	assert.Equal(t, "100.00", table.Format(out.Rows[0]["moving_avg"]))
	assert.Equal(t, "200.00", table.Format(out.Rows[1]["moving_avg"]))
}

func TestTrailingAvg_TiesKeepInsertionOrder(t *testing.T) {
	// Duplicate months are not expected, but if present the original
	// insertion order must hold.
	tbl := table.New("year", "month", "revenue")
	tbl.Append(table.Row{"year": table.Int(2023), "month": table.Int(1), "revenue": table.NewDecimalInt64(1)})
	tbl.Append(table.Row{"year": table.Int(2023), "month": table.Int(1), "revenue": table.NewDecimalInt64(2)})

	out := TrailingAvg(tbl, monthOrder, "revenue", 3, "moving_avg")
	assert.Equal(t, "1", table.Format(out.Rows[0]["revenue"]))
	assert.Equal(t, "2", table.Format(out.Rows[1]["revenue"]))
	assert.Equal(t, "1.50", table.Format(out.Rows[1]["moving_avg"]))
}

func TestTrailingAvg_DoesNotMutateInput(t *testing.T) {
	in := monthlyTable(10, 20)
	_ = TrailingAvg(in, monthOrder, "revenue", 3, "moving_avg")
	assert.Equal(t, []string{"year", "month", "revenue"}, in.Columns)
	assert.False(t, in.HasColumn("moving_avg"))
}

// rounded renders a numeric cell at display precision.
func rounded(v table.Value) string {
	return table.Format(v.(table.Decimal).Round2())
}

func TestPartitionAvg_BroadcastsIdenticalAverage(t *testing.T) {
	// Category "A" with incomes [100, 300]: avg 200 for both rows,
	// diffs -100 and +100.
	tbl := table.New("category", "revenue")
	tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(100)})
	tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(300)})

	out := PartitionAvg(tbl, []string{"category"}, "revenue", "category_avg", "diff")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "200.00", rounded(out.Rows[0]["category_avg"]))
	assert.Equal(t, "200.00", rounded(out.Rows[1]["category_avg"]))
	assert.Equal(t, "-100.00", rounded(out.Rows[0]["diff"]))
	assert.Equal(t, "100.00", rounded(out.Rows[1]["diff"]))
}

func TestPartitionAvg_PartitionsAreIndependent(t *testing.T) {
	tbl := table.New("category", "revenue")
	tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(100)})
	tbl.Append(table.Row{"category": table.String("B"), "revenue": table.NewDecimalInt64(900)})

	out := PartitionAvg(tbl, []string{"category"}, "revenue", "avg", "diff")
	assert.Equal(t, "100.00", rounded(out.Rows[0]["avg"]))
	assert.Equal(t, "900.00", rounded(out.Rows[1]["avg"]))
	assert.Equal(t, "0.00", rounded(out.Rows[0]["diff"]))
}

func TestPartitionAvg_OrderIndependent(t *testing.T) {
	// The partition average does not depend on row order.
	build := func(first, second int64) *table.Table {
		tbl := table.New("category", "revenue")
		tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(first)})
		tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(second)})
		return PartitionAvg(tbl, []string{"category"}, "revenue", "avg", "diff")
	}
	a := build(100, 300)
	b := build(300, 100)
	assert.Equal(t, table.Format(a.Rows[0]["avg"]), table.Format(b.Rows[0]["avg"]))
}

func TestPartitionAvg_ExactIntermediateArithmetic(t *testing.T) {
	// (10 + 20 + 35) / 3: the diff is computed against the exact
	// average - 35 - 21.666... = 13.33 at display precision, not 13.34.
	tbl := table.New("category", "revenue")
	for _, rev := range []int64{10, 20, 35} {
		tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(rev)})
	}
	out := PartitionAvg(tbl, []string{"category"}, "revenue", "avg", "diff")
	assert.Equal(t, "21.67", rounded(out.Rows[2]["avg"]))
	assert.Equal(t, "13.33", rounded(out.Rows[2]["diff"]))
}

func TestPartitionAvg_AvgColumnKeepsFullPrecision(t *testing.T) {
	// The stored average of [10, 20, 35] is the exact 21.666..., never the
	// display value 21.67. A revenue of exactly 21.67 must therefore
	// compare as greater than the average, not equal to it.
	tbl := table.New("category", "revenue")
	for _, rev := range []int64{10, 20, 35} {
		tbl.Append(table.Row{"category": table.String("A"), "revenue": table.NewDecimalInt64(rev)})
	}
	out := PartitionAvg(tbl, []string{"category"}, "revenue", "avg", "diff")

	avg := out.Rows[0]["avg"].(table.Decimal)
	assert.NotEqual(t, "21.67", table.Format(avg))
	assert.Equal(t, "21.67", rounded(avg))

	display, err := table.ParseDecimal("21.67")
	require.NoError(t, err)
	assert.Equal(t, table.String("Above"), Classify(display, avg, Labels{Higher: "Above", Lower: "Below", Equal: "Avg"}))
}
