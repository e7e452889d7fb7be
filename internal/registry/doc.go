// Package registry tracks which dictionary identifiers map to which display
// names and persists the mapping as a JSON side file after each batch.
package registry
