package engine

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownReportError reports a run_report call with a name outside the
// catalog. Surfaced immediately; there is nothing to retry.
type UnknownReportError struct {
	// Name is the requested report name.
	Name string

	// Known lists the valid report names, in catalog order.
	Known []string
}

// Error implements the error interface.
func (e *UnknownReportError) Error() string {
	return fmt.Sprintf("unknown report %q (valid: %s)", e.Name, strings.Join(e.Known, ", "))
}

// IsUnknownReport reports whether err is (or wraps) an UnknownReportError.
func IsUnknownReport(err error) bool {
	var ue *UnknownReportError
	return errors.As(err, &ue)
}
