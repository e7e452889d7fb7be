// Package tabular decodes the catalog's compressed tabular exports into
// in-memory tables and writes them back out as CSV files. It tolerates the
// delimiter and character-encoding variance found across dictionary exports.
package tabular
