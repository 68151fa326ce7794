// Package config loads and validates the TOML configuration for the obisqc
// CLI: WoRMS endpoint settings, batch worker count, lookup cache location,
// and logging options.
package config
