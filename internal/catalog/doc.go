// Package catalog talks to the remote dictionary catalog: passport (metadata)
// lookups, latest-version resolution with a per-resolver cache, and data-file
// downloads.
//
// Lookups for a batch fan out concurrently and every outcome is collected
// independently; a failed identifier is reported and skipped, never fatal to
// the batch. The catalog's list-or-single passport response shape is
// normalized at the parse boundary and does not leak past this package.
package catalog
