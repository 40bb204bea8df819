package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedata/lattice/internal/table"
)

// TestScenarios runs every YAML scenario under testdata/scenarios against
// its golden file.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_ReportsInScenarioOrder(t *testing.T) {
	s := &Scenario{
		Name:        "order",
		Description: "report order follows the scenario",
		Dataset: DatasetSpec{Facts: []FactRow{
			{Date: "2023-01-05", Store: "S001", Product: "A", Category: "Toys", Units: 1},
		}},
		Reports: []ReportCheck{{Name: "category_revenue"}, {Name: "store_revenue"}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, "category_revenue", result.Reports[0].Name)
	assert.Equal(t, "store_revenue", result.Reports[1].Name)
	assert.False(t, result.Failed())
}

func TestRun_UnknownReportIsExecutionError(t *testing.T) {
	s := &Scenario{
		Name:        "unknown",
		Description: "unknown report aborts the run",
		Reports:     []ReportCheck{{Name: "nope"}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report")
}

func TestRun_InvalidDatasetIsExecutionError(t *testing.T) {
	s := &Scenario{
		Name:        "invalid",
		Description: "negative quantities fail dataset validation",
		Dataset: DatasetSpec{Facts: []FactRow{
			{Date: "2023-01-05", Store: "S001", Product: "A", Category: "Toys", Units: -1},
		}},
		Reports: []ReportCheck{{Name: "store_revenue"}},
	}

	_, err := Run(s)
	require.Error(t, err)
}

func TestRun_StoreOverrideApplies(t *testing.T) {
	s := &Scenario{
		Name:        "override",
		Description: "check overrides narrow the store filter",
		Dataset: DatasetSpec{Facts: []FactRow{
			{Date: "2023-01-05", Store: "S001", Product: "A", Category: "Toys", Units: 1},
			{Date: "2023-01-06", Store: "S002", Product: "B", Category: "Toys", Units: 1},
		}},
		Reports: []ReportCheck{{Name: "store_revenue", Stores: []string{"S002"}}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Equal(t, 1, result.Reports[0].Table.Len())
	assert.Equal(t, table.String("S002"), result.Reports[0].Table.Rows[0]["store_id"])
}

func TestCheckExpectation_ReportsMismatches(t *testing.T) {
	tbl := table.New("store_id", "units")
	tbl.Append(table.Row{"store_id": table.String("S001"), "units": table.Int(6)})

	two := 2
	failures := checkExpectation(&Expectation{RowCount: &two}, tbl)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "row count")

	failures = checkExpectation(&Expectation{
		Rows: []map[string]any{{"store_id": "S002", "units": 6}},
	}, tbl)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `got "S001"`)

	failures = checkExpectation(&Expectation{
		Rows: []map[string]any{{"weather": "Sunny"}},
	}, tbl)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "unknown column")
}

func TestCheckExpectation_NullMatchesNil(t *testing.T) {
	tbl := table.New("promotion")
	tbl.Append(table.Row{"promotion": table.Null{}})

	failures := checkExpectation(&Expectation{
		Rows: []map[string]any{{"promotion": nil}},
	}, tbl)
	assert.Empty(t, failures)
}
