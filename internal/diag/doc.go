// Package diag defines the diagnostic model shared by the block parser, the
// template parser, the script tokenizer and the code generators.
//
// Diagnostics are collected, never thrown: every phase receives a Reporter and
// keeps going after reporting, so a best-effort virtual file is produced even
// for broken input.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier grouped by phase (SFC, TPL, SCR, GEN, IO, CFG,
//     OBS); Code.ID renders the stable string form.
//   - Primary – the source.Span the finding points at.
//   - Notes and Fixes – optional secondary spans and edit suggestions.
//
// Phases build diagnostics with ReportError/ReportWarning and chain WithNote
// before Emit, or call Reporter.Report directly. BagReporter stores them in a
// Bag, which can be sorted, deduplicated and filtered.
//
// Rendering lives in internal/diagfmt.
package diag
