// Package taxocache persists WoRMS lookup results in SQLite between runs and
// exposes a caching decorator around the taxonomy matcher. The per-batch
// deduplication inside the checker remains separate; this cache only carries
// results across invocations.
package taxocache
