package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/latticedata/lattice/internal/table"
)

// snapshot is the golden-file form of a scenario run. Every cell renders as
// its display string (null cells as JSON null), so golden diffs read exactly
// like report output.
type snapshot struct {
	Scenario string          `json:"scenario"`
	Reports  []tableSnapshot `json:"reports"`
}

type tableSnapshot struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

func newSnapshot(result *Result) snapshot {
	snap := snapshot{Scenario: result.Scenario, Reports: make([]tableSnapshot, 0, len(result.Reports))}
	for _, rep := range result.Reports {
		ts := tableSnapshot{
			Name:    rep.Name,
			Columns: rep.Table.Columns,
			Rows:    make([][]*string, 0, rep.Table.Len()),
		}
		for _, row := range rep.Table.Rows {
			cells := make([]*string, len(rep.Table.Columns))
			for i, col := range rep.Table.Columns {
				v := row.Get(col)
				if table.IsNull(v) {
					continue
				}
				s := table.Format(v)
				cells[i] = &s
			}
			ts.Rows = append(ts.Rows, cells)
		}
		snap.Reports = append(snap.Reports, ts)
	}
	return snap
}

// RunWithGolden executes a scenario, fails the test on any inline expectation
// mismatch, and compares the full report output against the golden file
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, rep := range result.Reports {
		for _, failure := range rep.Failures {
			t.Errorf("%s: %s: %s", scenario.Name, rep.Name, failure)
		}
	}

	data, err := json.MarshalIndent(newSnapshot(result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
