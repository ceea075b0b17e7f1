// Package diag defines the diagnostic model shared by the lexer, parser and
// the command line front end.
//
// Diagnostic is the central record: a severity, a compact numeric code with a
// stable string form, a short message, a primary span and optional notes.
// Producers emit through a Reporter; BagReporter collects into a Bag which the
// caller turns into an error when it holds anything at SevError.
//
// Package diag performs no IO. Rendering lives in Format.
package diag
