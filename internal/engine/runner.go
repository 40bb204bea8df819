package engine

import (
	"sync"

	"github.com/latticedata/lattice/internal/catalog"
	"github.com/latticedata/lattice/internal/dataset"
	"github.com/latticedata/lattice/internal/table"
)

// Runner evaluates catalog reports against one loaded dataset. The dataset
// and catalog are read-only, so a Runner may serve concurrent Run calls
// without locking.
type Runner struct {
	data    *dataset.Dataset
	reports []catalog.Report
	byName  map[string]*catalog.Report
}

// NewRunner creates a runner over a validated dataset and compiled catalog.
func NewRunner(ds *dataset.Dataset, reports []catalog.Report) *Runner {
	r := &Runner{data: ds, reports: reports, byName: make(map[string]*catalog.Report, len(reports))}
	for i := range reports {
		r.byName[reports[i].Name] = &reports[i]
	}
	return r
}

// Reports returns the catalog entries in declaration order.
func (r *Runner) Reports() []catalog.Report {
	return r.reports
}

// Options are the caller-supplied filter overrides. Zero values defer to the
// report's catalog defaults.
type Options struct {
	// StoreIDs restricts the report to a store subset.
	StoreIDs []string

	// BeforeYear keeps only sales with year < BeforeYear.
	BeforeYear int
}

// Run evaluates one report: filter, aggregate, window, classify, sort,
// round. Pure - re-running on unchanged input yields identical output.
//
// A report over zero matching rows returns an empty table, except scalar
// reports, which return their single row computed over the empty set.
func (r *Runner) Run(name string, opts Options) (*table.Table, error) {
	rep, ok := r.byName[name]
	if !ok {
		known := make([]string, len(r.reports))
		for i := range r.reports {
			known[i] = r.reports[i].Name
		}
		return nil, &UnknownReportError{Name: name, Known: known}
	}

	facts := r.filter(rep, opts)

	keyFn := r.keyFunc(rep.GroupBy)
	out, err := Aggregate(facts, rep.GroupBy, keyFn, rep.Measures)
	if err != nil {
		return nil, err
	}

	if rep.Scalar && out.Len() == 0 {
		// Scalar reports answer even over an empty row set: counts are 0,
		// not absent.
		row := make(table.Row, len(rep.Measures))
		for _, m := range rep.Measures {
			if m.Kind == catalog.MeasureCount {
				row[m.Name] = table.Int(0)
			} else {
				row[m.Name] = table.Null{}
			}
		}
		out.Append(row)
	}

	if w := rep.Window; w != nil {
		switch w.Kind {
		case catalog.WindowTrailingAvg:
			order := []table.SortKey{{Column: "year"}, {Column: "month"}}
			out = TrailingAvg(out, order, w.Measure, w.Width, w.Output)
		case catalog.WindowPartitionAvg:
			out = PartitionAvg(out, w.Partition, w.Measure, w.AvgOutput, w.DiffOutput)
		}
	}

	if c := rep.Classifier; c != nil {
		out.AddColumn(c.Output)
		labels := Labels{Higher: c.Higher, Lower: c.Lower, Equal: c.Equal}
		for _, row := range out.Rows {
			row[c.Output] = Classify(row.Get(c.Left), row.Get(c.Right), labels)
		}
	}

	sort := make([]table.SortKey, len(rep.Sort))
	for i, s := range rep.Sort {
		sort[i] = table.SortKey{Column: s.Column, Desc: s.Desc}
	}
	out.Sort(sort)

	// Display rounding, once, after all arithmetic.
	out.RoundColumns(out.Columns...)

	return out, nil
}

// filter applies the report's default filter with caller overrides and
// returns the matching fact rows. The returned slice is fresh; the dataset's
// row order is preserved.
func (r *Runner) filter(rep *catalog.Report, opts Options) []dataset.Fact {
	storeIDs := rep.Filter.StoreIDs
	if len(opts.StoreIDs) > 0 {
		storeIDs = opts.StoreIDs
	}
	var storeSet map[string]bool
	if len(storeIDs) > 0 {
		storeSet = make(map[string]bool, len(storeIDs))
		for _, id := range storeIDs {
			storeSet[id] = true
		}
	}

	beforeYear := rep.Filter.BeforeYear
	if opts.BeforeYear != 0 {
		beforeYear = opts.BeforeYear
	}

	var out []dataset.Fact
	for _, f := range r.data.Facts {
		if storeSet != nil && !storeSet[f.StoreID] {
			continue
		}
		if beforeYear != 0 && f.SaleDate.Year >= beforeYear {
			continue
		}
		if rep.Filter.Predicate == "demand_exceeds_inventory" && f.Demand <= f.InventoryLevel {
			continue
		}
		out = append(out, f)
	}
	return out
}

// keyFunc builds the group-key extractor for the report's grouping columns.
// Dimension-resolved columns (season, region, promotion) go through the
// lookups; the loader guarantees they resolve.
func (r *Runner) keyFunc(groupBy []string) KeyFunc {
	extractors := make([]func(*dataset.Fact) table.Value, len(groupBy))
	for i, col := range groupBy {
		switch col {
		case "store_id":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.String(f.StoreID) }
		case "category":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.String(f.Category) }
		case "weather":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.String(f.Weather) }
		case "season":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.String(r.data.Season(f.SaleDate)) }
		case "region":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.String(r.data.Region(f.StoreID)) }
		case "year":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.Int(int64(f.SaleDate.Year)) }
		case "month":
			extractors[i] = func(f *dataset.Fact) table.Value { return table.Int(int64(f.SaleDate.Month)) }
		case "promotion":
			extractors[i] = func(f *dataset.Fact) table.Value {
				if !f.HasPromotion() {
					return table.Null{}
				}
				return table.String(r.data.PromotionName(f.Promotion))
			}
		}
	}
	return func(f *dataset.Fact) table.Key {
		key := make(table.Key, len(extractors))
		for i, ex := range extractors {
			key[i] = ex(f)
		}
		return key
	}
}

// Result pairs a report name with its output (or error) for RunAll.
type Result struct {
	Name  string
	Table *table.Table
	Err   error
}

// RunAll evaluates the whole battery concurrently. Reports share only the
// read-only dataset, so they need no synchronization beyond the result
// slots (one per report, no contention).
func (r *Runner) RunAll(opts Options) []Result {
	results := make([]Result, len(r.reports))
	var wg sync.WaitGroup
	for i := range r.reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := r.reports[i].Name
			tbl, err := r.Run(name, opts)
			results[i] = Result{Name: name, Table: tbl, Err: err}
		}(i)
	}
	wg.Wait()
	return results
}
