// Package fetch orchestrates batch dictionary retrieval: one metadata
// resolution pass, then per-identifier download, decode, and CSV output,
// with failures isolated to the offending identifier and outcomes reported
// in input order.
package fetch
