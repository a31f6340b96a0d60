// Package diag defines the per-file diagnostic model and the report a check
// run produces.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//     SYN2xxx codes are grammar faults, IO4xxx codes are files that could not be
//     read or evaluated in time. Kind() derives the coarse outcome from it.
//   - Path / SourcePath – the file as given to the check.
//   - Line / Column – position of the first fault. Line is 1-based, Column is
//     0-based and counted in UTF-16 code units, the convention of JavaScript
//     parsers. Downstream tooling parses these values, so they are passed
//     through exactly as the evaluator reports them.
//   - Excerpt – the literal offending source text, cut at the line end.
//   - Message – the raw fault description, ending in "(line:column)".
//
// A file contributes at most one Diagnostic: evaluation stops at the first
// fault because later positions are meaningless after it.
//
// # Aggregation
//
// Aggregate turns a position-indexed slice of per-file results into a Report.
// It never reorders or deduplicates. Report.Passed is true iff no diagnostics
// were produced.
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt and orchestration in internal/driver.
package diag
