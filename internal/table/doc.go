// Package table provides the value model and result-table types for lattice.
//
// This package contains the foundational types. All other internal packages
// import table; table imports nothing internal, which keeps it free of
// circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - monetary values are exact apd decimals,
//     counts are int64. Rounding to 2 places happens once, at the output
//     boundary, never before later arithmetic.
//   - Group-key tuples encode canonically (NFC-normalized, type-tagged) so
//     grouping is deterministic and Null stays distinct from "".
//   - Sorting is stable: equal keys keep insertion order.
package table
