// Package diag defines the diagnostic model shared by the unit loader, the
// query front end and the reflection evaluator.
//
// Diagnostic is the central record: Severity, a stable numeric Code (with an
// ID prefix per range: SYN, REF, IO, UNT, PRJ, OBS), a short Message, the
// Primary span and optional Notes. Producers emit through a Reporter,
// usually via ReportError(...).WithNote(...).Emit(); a Bag stores the result
// with a hard limit.
//
// Package diag does no formatting. Rendering lives in internal/diagfmt.
package diag
