package report

import (
	"math"
	"strconv"
	"strings"
)

// NoData fills the first cell of a table that has no rows.
const NoData = "No data of this type"

// Table is one named sheet of the analysis document.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Records returns the rows to render: the data rows, or a single sentinel
// row when there are none.
func (t Table) Records() [][]string {
	if !t.Empty() {
		return t.Rows
	}
	row := make([]string, max(len(t.Header), 1))
	row[0] = NoData
	return [][]string{row}
}

// Column returns the values of the named column.
func (t Table) Column(name string) []string {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values
}

func dedupeRows(rows [][]string) [][]string {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		key := strings.Join(row, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// formatNumber drops float noise from sums before rendering.
func formatNumber(v float64) string {
	return strconv.FormatFloat(round(v, 6), 'f', -1, 64)
}
