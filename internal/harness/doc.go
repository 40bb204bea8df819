// Package harness runs YAML conformance scenarios against the report engine.
//
// A scenario declares an inline dataset and a list of reports to evaluate.
// Expectations come in two layers: inline row assertions in the YAML, and a
// goldie golden file capturing the complete output of every listed report.
// Because the engine is deterministic, golden comparison is byte-exact.
package harness
