// Package tabular reads and writes the header-keyed CSV files formatrisk
// exchanges with archivists: the identification store, the reference
// datasets, and the manifest logs.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"formatrisk/internal/services"
	"formatrisk/internal/textutil"
)

// Repair records a row whose undecodable bytes were dropped while reading.
type Repair struct {
	Line int
	// Key is the row's first column (a file path for the store), used to
	// tell the archivist which entry was affected.
	Key string
}

// Table is a parsed CSV file addressed by header name.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Read parses the CSV file at path.
func Read(path string) (*Table, []Repair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return Parse(file, filepath.Base(path))
}

// Parse reads a CSV document whose first record is the header. Fields that
// are not valid UTF-8 have the offending bytes removed and are reported as
// repairs instead of failing the read.
func Parse(r io.Reader, name string) (*Table, []Repair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{Name: name, index: map[string]int{}}
	var repairs []Repair
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, repairs, services.Wrap(services.ErrValidation, "tabular", "parse", name, err)
		}
		line++
		if textutil.DropInvalidFields(record) {
			key := ""
			if len(record) > 0 {
				key = record[0]
			}
			repairs = append(repairs, Repair{Line: line, Key: key})
		}
		if table.Header == nil {
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			table.Header = record
			for i, column := range record {
				column = strings.TrimSpace(column)
				if _, exists := table.index[column]; !exists {
					table.index[column] = i
				}
			}
			continue
		}
		if isBlank(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	if table.Header == nil {
		return nil, repairs, services.Wrap(services.ErrValidation, "tabular", "parse", name+": missing header row", nil)
	}
	return table, repairs, nil
}

// Missing returns the columns the header lacks, in the order given.
func (t *Table) Missing(columns ...string) []string {
	var missing []string
	for _, column := range columns {
		if _, ok := t.index[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// Require reports every column in columns that the header lacks.
func (t *Table) Require(columns ...string) error {
	missing := t.Missing(columns...)
	if len(missing) == 0 {
		return nil
	}
	quoted := make([]string, len(missing))
	for i, column := range missing {
		quoted[i] = fmt.Sprintf("%q", column)
	}
	return services.Wrap(services.ErrValidation, "tabular", t.Name, "missing required column(s) "+strings.Join(quoted, ", "), nil)
}

// Has reports whether the header contains column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the named column of row, or "" when the column is absent or
// the row is short.
func (t *Table) Value(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Write replaces path with a CSV document. The file is written beside the
// target and renamed into place so readers never observe a partial file.
func Write(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
