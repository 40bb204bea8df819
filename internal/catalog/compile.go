package catalog

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed reports.cue
var reportsCUE string

// CompileError reports a catalog entry that failed compilation or
// validation.
type CompileError struct {
	// Report is the report name, or "" when the failure precedes naming.
	Report string

	// Field identifies the offending field.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Report != "" {
		return fmt.Sprintf("report %q: %s: %s", e.Report, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load compiles the embedded CUE catalog into the report battery.
// Uses the CUE SDK's Go API directly (not a CLI subprocess); the #Report
// schema constrains shapes, then Validate enforces the cross-field rules CUE
// cannot express (column references resolving, unique names).
func Load() ([]Report, error) {
	return compile(reportsCUE)
}

func compile(src string) ([]Report, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("reports.cue"))
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "reports.cue", Message: err.Error()}
	}

	listVal := v.LookupPath(cue.ParsePath("reports"))
	if !listVal.Exists() {
		return nil, &CompileError{Field: "reports", Message: "catalog defines no reports list"}
	}
	if err := listVal.Validate(cue.Concrete(true)); err != nil {
		return nil, &CompileError{Field: "reports", Message: err.Error()}
	}

	var reports []Report
	if err := listVal.Decode(&reports); err != nil {
		return nil, &CompileError{Field: "reports", Message: fmt.Sprintf("decode: %v", err)}
	}
	if len(reports) == 0 {
		return nil, &CompileError{Field: "reports", Message: "catalog is empty"}
	}

	seen := make(map[string]bool, len(reports))
	for i := range reports {
		r := &reports[i]
		if seen[r.Name] {
			return nil, &CompileError{Report: r.Name, Field: "name", Message: "duplicate report name"}
		}
		seen[r.Name] = true
		if err := validateReport(r); err != nil {
			return nil, err
		}
	}
	return reports, nil
}
