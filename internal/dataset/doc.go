// Package dataset defines the star-schema sales dataset: immutable fact rows
// plus the three dimension lookups (store, date, promotion), and the batch
// loader that populates them from CSV exports.
//
// The dataset is populated once and read-only thereafter. Every invariant is
// enforced at load time; a violating row aborts the load with a
// ValidationError carrying the row's identifying fields. Nothing is silently
// dropped except exact-duplicate dimension rows (see LoadOptions).
package dataset
