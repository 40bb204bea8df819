package catalog

import "fmt"

// validateReport enforces the cross-field rules the CUE schema cannot:
// every referenced column exists, every produced column is unique, sort and
// classifier references resolve to produced columns.
func validateReport(r *Report) error {
	fail := func(field, msg string) *CompileError {
		return &CompileError{Report: r.Name, Field: field, Message: msg}
	}

	if r.Name == "" {
		return &CompileError{Field: "name", Message: "report name is required"}
	}

	// Produced columns: group keys first, then measures, then window and
	// classifier outputs.
	produced := make(map[string]bool)
	for _, col := range r.GroupBy {
		if !GroupColumns[col] {
			return fail("group_by", fmt.Sprintf("unknown grouping column %q", col))
		}
		if produced[col] {
			return fail("group_by", fmt.Sprintf("duplicate grouping column %q", col))
		}
		produced[col] = true
	}

	if len(r.Measures) == 0 {
		return fail("measures", "at least one measure is required")
	}
	for _, m := range r.Measures {
		if m.Name == "" {
			return fail("measures", "measure name is required")
		}
		if produced[m.Name] {
			return fail("measures", fmt.Sprintf("duplicate output column %q", m.Name))
		}
		produced[m.Name] = true
		switch m.Kind {
		case MeasureCount:
			if m.Field != "" || m.Field2 != "" {
				return fail("measures", fmt.Sprintf("count measure %q must not name fields", m.Name))
			}
		case MeasureSum, MeasureAvg:
			if !MeasureFields[m.Field] {
				return fail("measures", fmt.Sprintf("measure %q references unknown field %q", m.Name, m.Field))
			}
			if m.Field2 != "" {
				return fail("measures", fmt.Sprintf("measure %q takes one field", m.Name))
			}
		case MeasureSumProduct:
			if !MeasureFields[m.Field] || !MeasureFields[m.Field2] {
				return fail("measures", fmt.Sprintf("measure %q references unknown field pair (%q, %q)", m.Name, m.Field, m.Field2))
			}
		default:
			return fail("measures", fmt.Sprintf("unknown measure kind %q", m.Kind))
		}
	}

	if w := r.Window; w != nil {
		if !produced[w.Measure] {
			return fail("window", fmt.Sprintf("window measure %q is not a produced column", w.Measure))
		}
		switch w.Kind {
		case WindowTrailingAvg:
			if w.Output == "" {
				return fail("window", "trailing_avg requires an output column")
			}
			if w.Width < 2 {
				return fail("window", "trailing_avg requires width > 1")
			}
			if !produced["year"] || !produced["month"] {
				return fail("window", "trailing_avg requires year and month grouping columns")
			}
			if produced[w.Output] {
				return fail("window", fmt.Sprintf("output column %q already produced", w.Output))
			}
			produced[w.Output] = true
		case WindowPartitionAvg:
			if w.AvgOutput == "" || w.DiffOutput == "" {
				return fail("window", "partition_avg requires avg_output and diff_output columns")
			}
			if len(w.Partition) == 0 {
				return fail("window", "partition_avg requires a partition key")
			}
			for _, col := range w.Partition {
				if !produced[col] {
					return fail("window", fmt.Sprintf("partition column %q is not a produced column", col))
				}
			}
			for _, out := range []string{w.AvgOutput, w.DiffOutput} {
				if produced[out] {
					return fail("window", fmt.Sprintf("output column %q already produced", out))
				}
				produced[out] = true
			}
		default:
			return fail("window", fmt.Sprintf("unknown window kind %q", w.Kind))
		}
	}

	if c := r.Classifier; c != nil {
		for _, ref := range []string{c.Left, c.Right} {
			if !produced[ref] {
				return fail("classifier", fmt.Sprintf("classifier input %q is not a produced column", ref))
			}
		}
		if c.Higher == "" || c.Lower == "" || c.Equal == "" {
			return fail("classifier", "all three labels are required")
		}
		if c.Output == "" || produced[c.Output] {
			return fail("classifier", fmt.Sprintf("classifier output %q missing or already produced", c.Output))
		}
		produced[c.Output] = true
	}

	if r.Filter.Predicate != "" && !Predicates[r.Filter.Predicate] {
		return fail("filter", fmt.Sprintf("unknown predicate %q", r.Filter.Predicate))
	}

	for _, s := range r.Sort {
		if !produced[s.Column] {
			return fail("sort", fmt.Sprintf("sort column %q is not a produced column", s.Column))
		}
	}

	if r.Scalar && len(r.GroupBy) != 0 {
		return fail("scalar", "scalar reports cannot have grouping columns")
	}

	return nil
}
