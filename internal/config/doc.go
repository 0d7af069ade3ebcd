// Package config loads, validates, and normalizes shuttle configuration.
//
// Configuration lives in a TOML file (default ~/.config/shuttle/config.toml).
// All path fields are tilde-expanded and made absolute during load, and every
// consumer receives a value that already passed Validate. The embedded sample
// config is the authoritative reference for available settings.
package config
