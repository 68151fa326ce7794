// Package worms implements the client for the WoRMS (World Register of
// Marine Species) REST API, the taxonomic backbone consulted by the taxonomy
// QC stage.
//
// The client distinguishes permanent outcomes (ErrNotFound for unknown ids,
// empty candidate lists for unmatched names) from transient service failures,
// which are retried with bounded exponential backoff and surfaced as
// ErrUnavailable once the budget is exhausted. The decision engine depends on
// that distinction: a transient failure must never be reported as a data
// quality problem.
package worms
