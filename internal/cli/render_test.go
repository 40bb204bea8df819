package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedata/lattice/internal/table"
)

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan-23", monthLabel(table.Int(2023), table.Int(1)))
	assert.Equal(t, "Dec-24", monthLabel(table.Int(2024), table.Int(12)))
	assert.Equal(t, "Mar-05", monthLabel(table.Int(2005), table.Int(3)))

	assert.Equal(t, "", monthLabel(table.Null{}, table.Int(1)))
	assert.Equal(t, "", monthLabel(table.Int(2023), table.Int(13)))
}

func TestCellJSON(t *testing.T) {
	d, err := table.ParseDecimal("70.00")
	require.NoError(t, err)

	assert.Nil(t, cellJSON(table.Null{}))
	assert.Equal(t, "S001", cellJSON(table.String("S001")))
	assert.Equal(t, int64(6), cellJSON(table.Int(6)))
	assert.Equal(t, true, cellJSON(table.Bool(true)))
	assert.Equal(t, "70.00", cellJSON(d), "decimals serialize as exact strings")
}

func TestNewTableJSON_PreservesColumnOrder(t *testing.T) {
	tbl := table.New("store_id", "revenue")
	rev, _ := table.ParseDecimal("30.00")
	tbl.Append(table.Row{"store_id": table.String("S001"), "revenue": rev})

	got := NewTableJSON("store_revenue", "Revenue by store", tbl)
	assert.Equal(t, []string{"store_id", "revenue"}, got.Columns)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "30.00", got.Rows[0]["revenue"])
}

func TestRenderTable_EmptyTable(t *testing.T) {
	var b strings.Builder
	renderTable(&b, "Revenue by store", table.New("store_id", "revenue"))

	assert.Contains(t, b.String(), "Revenue by store")
	assert.Contains(t, b.String(), "(no rows)")
}

func TestRenderTable_MonthlyTablesGetLabel(t *testing.T) {
	tbl := table.New("year", "month", "revenue")
	rev, _ := table.ParseDecimal("30.00")
	tbl.Append(table.Row{"year": table.Int(2023), "month": table.Int(1), "revenue": rev})

	var b strings.Builder
	renderTable(&b, "Monthly sales trend", tbl)

	out := b.String()
	assert.Contains(t, out, "month_label")
	assert.Contains(t, out, "Jan-23")
	assert.Contains(t, out, "1 row(s)")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	tbl := table.New("store_id", "units")
	tbl.Append(table.Row{"store_id": table.String("S001"), "units": table.Int(6)})
	tbl.Append(table.Row{"store_id": table.String("LONG_STORE_ID"), "units": table.Int(10)})

	var b strings.Builder
	renderTable(&b, "", tbl)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	// Header, rule, two rows, count line.
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "store_id")
	assert.True(t, strings.HasPrefix(lines[1], "  -"), "rule under the header")
}
