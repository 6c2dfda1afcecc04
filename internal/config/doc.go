// Package config loads, normalizes, and validates bindery's TOML
// configuration.
//
// Configuration is process-wide constant state fixed at startup: Load resolves
// the file (explicit flag, ~/.config/bindery/config.toml, or ./bindery.toml),
// expands ~ in every path field, fills defaults, and validates the result.
// Components receive the *Config value at construction rather than reading
// ambient globals, so multiple pipeline instances can run against different
// roots in tests.
package config
