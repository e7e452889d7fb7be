// Package config loads, normalizes, and validates refcat's TOML
// configuration.
//
// Configuration is resolved from an explicit path, then
// ~/.config/refcat/config.toml, then ./refcat.toml, falling back to
// repository defaults when no file exists. All path fields are expanded to
// absolute paths before validation so downstream packages never deal with
// tildes or relative segments.
package config
