// Package engine implements the lattice aggregation and window engine.
//
// The engine interprets catalog.Report definitions against a read-only
// dataset. Every report runs the same pipeline:
//
//	filter -> aggregate -> window (optional) -> classify (optional) -> sort -> round
//
// ARCHITECTURE:
//
// Single pass, deterministic:
// The aggregator makes one full pass over the filtered rows with one group
// membership test per row; groups keep first-seen order, so identical input
// produces identical output even before sorting. Sorting is stable, so key
// ties keep that order too.
//
// Two window semantics, implemented explicitly:
//   - trailing average: sort-then-slide; the frame is the current row plus up
//     to width-1 preceding rows, growing from width 1 at the start.
//   - partition-relative average: group-then-broadcast; every row in a
//     partition carries the identical partition mean.
//
// Exact arithmetic:
// Monetary values are apd decimals summed at full precision; rounding to 2
// places happens once per output column, never before later arithmetic.
//
// Reports are pure functions of (facts, lookups). The dataset is never
// mutated, so a Runner is safe for concurrent use without locking.
package engine
