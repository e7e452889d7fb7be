package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is one decoded dictionary export: a header row and the data rows
// beneath it. Transient; tables are never cached.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// WriteCSV writes the table to path as UTF-8 comma-delimited text, header
// first, no index column.
func (t *Table) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		file.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
