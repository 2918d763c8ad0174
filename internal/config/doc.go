// Package config loads, normalizes, and validates launcher configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads the optional TOML file under the user config
// directory. Always obtain settings through this package so downstream code
// receives sanitized paths and canonical log formats.
package config
