// Package history persists per-identifier fetch outcomes to a SQLite
// database so past batch runs can be inspected from the CLI.
package history
