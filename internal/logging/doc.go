// Package logging wires log/slog handlers for the obisqc CLI and library and
// exposes small attribute helpers so call sites stay terse.
package logging
