// Package taxonomy resolves occurrence records against the WoRMS taxonomic
// backbone and annotates them with quality flags.
//
// The Checker orchestrates the whole stage: it parses scientificNameID LSIDs,
// reconciles identifier and name candidates with a strict precedence policy,
// salvages annotated name strings through pluggable normalizer heuristics,
// walks synonym chains to the accepted taxon with cycle protection, and emits
// flags plus interpreted values ("aphia", "unaccepted", "marine") back onto
// each record. Lookups are deduplicated per batch and records resolve
// independently on a bounded worker pool.
//
// Centralize new matching heuristics in the NameNormalizer; the decision
// engine itself should stay free of string-level pattern knowledge.
package taxonomy
