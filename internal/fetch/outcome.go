package fetch

import "refcat/internal/tabular"

// Outcome is the per-identifier result of a batch or single fetch. Err is
// nil on success; Table is populated only in as-table mode, Path only when a
// file was written.
type Outcome struct {
	OID       string
	ShortName string
	Version   string
	Path      string
	RowCount  int
	Table     *tabular.Table
	Err       error
}

// Succeeded reports whether the identifier was fetched without error.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
