// Package catalog holds the declarative report battery.
//
// Reports are declared in CUE (reports.cue) and compiled into Report values
// at startup. The engine interprets a Report; it never hard-codes a report
// shape. Adding a report means adding a catalog entry, not writing a new
// procedure.
//
// The catalog is data only: it references fact columns and measure kinds by
// name and knows nothing about execution.
package catalog
