package harness

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/latticedata/lattice/internal/catalog"
	"github.com/latticedata/lattice/internal/dataset"
	"github.com/latticedata/lattice/internal/engine"
	"github.com/latticedata/lattice/internal/table"
)

// ReportResult holds one evaluated report and any expectation failures.
type ReportResult struct {
	Name     string
	Table    *table.Table
	Failures []string
}

// Result holds the outcome of running a scenario.
type Result struct {
	Scenario string
	Reports  []ReportResult
}

// Failed reports whether any expectation failed.
func (r *Result) Failed() bool {
	for _, rep := range r.Reports {
		if len(rep.Failures) > 0 {
			return true
		}
	}
	return false
}

// Run executes a scenario: build and validate the inline dataset, evaluate
// each listed report, and check expectations. Execution errors (invalid
// dataset, unknown report) return an error; expectation mismatches land in
// the result's Failures.
func Run(s *Scenario) (*Result, error) {
	ds, err := buildDataset(&s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	reports, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	runner := engine.NewRunner(ds, reports)

	result := &Result{Scenario: s.Name}
	for _, chk := range s.Reports {
		tbl, err := runner.Run(chk.Name, engine.Options{
			StoreIDs:   chk.Stores,
			BeforeYear: chk.BeforeYear,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: report %s: %w", s.Name, chk.Name, err)
		}
		result.Reports = append(result.Reports, ReportResult{
			Name:     chk.Name,
			Table:    tbl,
			Failures: checkExpectation(chk.Expect, tbl),
		})
	}

	return result, nil
}

// buildDataset materializes the scenario dataset. Missing dimension rows are
// auto-registered the same way the fixture builder does it.
func buildDataset(spec *DatasetSpec) (*dataset.Dataset, error) {
	ds := dataset.NewDataset()

	for _, s := range spec.Stores {
		ds.Stores[s.ID] = dataset.StoreInfo{StoreID: s.ID, Region: s.Region}
	}
	for _, d := range spec.Dates {
		date, err := dataset.ParseDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("dates: %w", err)
		}
		ds.Dates[date] = dataset.DateInfo{Date: date, Seasonality: d.Season, Epidemic: d.Epidemic}
	}
	for _, p := range spec.Promotions {
		ds.Promotions[p.ID] = dataset.PromotionInfo{PromotionID: p.ID, Name: p.Name}
	}

	for i, row := range spec.Facts {
		f, err := buildFact(ds, row)
		if err != nil {
			return nil, fmt.Errorf("facts[%d]: %w", i, err)
		}
		ds.Facts = append(ds.Facts, f)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func buildFact(ds *dataset.Dataset, row FactRow) (dataset.Fact, error) {
	date, err := dataset.ParseDate(row.Date)
	if err != nil {
		return dataset.Fact{}, err
	}

	// Auto-register referenced dimensions.
	if _, ok := ds.Dates[date]; !ok {
		ds.Dates[date] = dataset.DateInfo{Date: date, Seasonality: seasonOf(date.Month)}
	}
	if _, ok := ds.Stores[row.Store]; !ok {
		ds.Stores[row.Store] = dataset.StoreInfo{StoreID: row.Store, Region: "North"}
	}
	if row.Promotion != "" {
		if _, ok := ds.Promotions[row.Promotion]; !ok {
			ds.Promotions[row.Promotion] = dataset.PromotionInfo{PromotionID: row.Promotion, Name: row.Promotion}
		}
	}

	f := dataset.Fact{
		SaleDate:       date,
		StoreID:        row.Store,
		ProductID:      row.Product,
		Category:       row.Category,
		InventoryLevel: row.Inventory,
		UnitsSold:      row.Units,
		UnitsOrdered:   row.Ordered,
		Weather:        defaultStr(row.Weather, "Sunny"),
		Promotion:      row.Promotion,
		Demand:         row.Demand,
	}
	if f.Price, err = parseDec(defaultStr(row.Price, "1")); err != nil {
		return dataset.Fact{}, fmt.Errorf("price: %w", err)
	}
	if f.Discount, err = parseDec(defaultStr(row.Discount, "0")); err != nil {
		return dataset.Fact{}, fmt.Errorf("discount: %w", err)
	}
	if row.CompetitorPrice != "" {
		if f.CompetitorPrice, err = parseDec(row.CompetitorPrice); err != nil {
			return dataset.Fact{}, fmt.Errorf("competitor_price: %w", err)
		}
	}
	return f, nil
}

// checkExpectation compares a report table against an expectation block.
func checkExpectation(exp *Expectation, tbl *table.Table) []string {
	if exp == nil {
		return nil
	}

	var failures []string
	if exp.RowCount != nil && tbl.Len() != *exp.RowCount {
		failures = append(failures, fmt.Sprintf("row count: got %d, want %d", tbl.Len(), *exp.RowCount))
	}

	if len(exp.Rows) > 0 {
		if tbl.Len() != len(exp.Rows) {
			failures = append(failures, fmt.Sprintf("row count: got %d, want %d", tbl.Len(), len(exp.Rows)))
			return failures
		}
		for i, want := range exp.Rows {
			row := tbl.Rows[i]
			for col, wantVal := range want {
				if !tbl.HasColumn(col) {
					failures = append(failures, fmt.Sprintf("row %d: unknown column %q", i, col))
					continue
				}
				got := table.Format(row.Get(col))
				if got != scalarString(wantVal) {
					failures = append(failures,
						fmt.Sprintf("row %d, column %s: got %q, want %q", i, col, got, scalarString(wantVal)))
				}
			}
		}
	}

	return failures
}

// scalarString renders a YAML scalar the way table.Format renders the
// matching value: null compares as the empty string.
func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func parseDec(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func seasonOf(month int) string {
	switch {
	case month >= 3 && month <= 5:
		return "Spring"
	case month >= 6 && month <= 8:
		return "Summer"
	case month >= 9 && month <= 11:
		return "Autumn"
	default:
		return "Winter"
	}
}
