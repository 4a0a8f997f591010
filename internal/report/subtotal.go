package report

import (
	"path/filepath"
	"strconv"
	"strings"

	"formatrisk/internal/appraisal"
	"formatrisk/internal/reference"
)

// Totals are the grand totals percentages are measured against.
type Totals struct {
	Files int
	MB    float64
}

// ComputeTotals counts rows and sums their size in megabytes.
func ComputeTotals(results []appraisal.Result) Totals {
	var kb float64
	for _, r := range results {
		kb += r.SizeKB
	}
	return Totals{Files: len(results), MB: kb / 1000}
}

// SubtotalRow is one group of a subtotal.
type SubtotalRow struct {
	Key         []string
	Files       int
	FilePercent float64
	SizeMB      float64
	SizePercent float64
}

// Subtotal columns.
const (
	ColFileCount   = "File Count"
	ColFilePercent = "File %"
	ColSizeMB      = "Size (MB)"
	ColSizePercent = "Size %"
)

// Subtotals groups results by the key columns. Groups appear in the order
// their key is first seen. Percentages are rounded to three places.
func Subtotals(results []appraisal.Result, keys []Column, totals Totals) []SubtotalRow {
	var rows []SubtotalRow
	index := map[string]int{}
	for _, r := range results {
		key := make([]string, len(keys))
		for i, c := range keys {
			key[i] = c.Value(r)
		}
		id := strings.Join(key, "\x00")
		i, ok := index[id]
		if !ok {
			i = len(rows)
			index[id] = i
			rows = append(rows, SubtotalRow{Key: key})
		}
		rows[i].Files++
		rows[i].SizeMB += r.SizeKB
	}
	for i := range rows {
		rows[i].SizeMB /= 1000
		rows[i].FilePercent = percent(float64(rows[i].Files), float64(totals.Files))
		rows[i].SizePercent = percent(rows[i].SizeMB, totals.MB)
	}
	return rows
}

// Subtotal renders Subtotals as a sheet.
func Subtotal(name string, results []appraisal.Result, keys []Column, totals Totals) Table {
	t := Table{Name: name, Header: append(header(keys), ColFileCount, ColFilePercent, ColSizeMB, ColSizePercent)}
	for _, row := range Subtotals(results, keys, totals) {
		cells := append([]string(nil), row.Key...)
		cells = append(cells,
			strconv.Itoa(row.Files),
			formatNumber(row.FilePercent),
			formatNumber(row.SizeMB),
			formatNumber(row.SizePercent),
		)
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round(part/whole*100, 3)
}

// MediaRow summarizes one top-level folder of the accession.
type MediaRow struct {
	Media              string
	Files              int
	SizeMB             float64
	HighRisk           int
	ModerateRisk       int
	LowRisk            int
	NoMatch            int
	TechnicalAppraisal int
	OtherRisk          int
}

// Media subtotal columns.
var mediaHeader = []string{
	"Media",
	ColFileCount,
	ColSizeMB,
	"NARA High Risk (File Count)",
	"NARA Moderate Risk (File Count)",
	"NARA Low Risk (File Count)",
	"No NARA Match (File Count)",
	"Technical Appraisal_Format (File Count)",
	"Other Risk Indicator (File Count)",
}

// MediaSubtotals groups results by the folder directly under root, one per
// physical carrier. Files directly in root belong to no medium and are
// skipped. Trash rows are not counted as technical appraisal since they are
// always removed.
func MediaSubtotals(results []appraisal.Result, root string) []MediaRow {
	var rows []MediaRow
	index := map[string]int{}
	for _, r := range results {
		media, ok := MediaOf(r.Path, root)
		if !ok {
			continue
		}
		i, seen := index[media]
		if !seen {
			i = len(rows)
			index[media] = i
			rows = append(rows, MediaRow{Media: media})
		}
		row := &rows[i]
		row.Files++
		row.SizeMB += r.SizeKB
		switch r.RiskLevel {
		case reference.HighRisk:
			row.HighRisk++
		case reference.ModerateRisk:
			row.ModerateRisk++
		case reference.LowRisk:
			row.LowRisk++
		case reference.NoMatch:
			row.NoMatch++
		}
		if r.TechnicalAppraisal == appraisal.TechnicalAppraisalFormat {
			row.TechnicalAppraisal++
		}
		if r.OtherRisk != appraisal.NotForOther {
			row.OtherRisk++
		}
	}
	for i := range rows {
		rows[i].SizeMB /= 1000
	}
	return rows
}

// MediaSubtotal renders MediaSubtotals as a sheet.
func MediaSubtotal(results []appraisal.Result, root string) Table {
	t := Table{Name: SheetMediaSubtotals, Header: append([]string(nil), mediaHeader...)}
	for _, row := range MediaSubtotals(results, root) {
		t.Rows = append(t.Rows, []string{
			row.Media,
			strconv.Itoa(row.Files),
			formatNumber(row.SizeMB),
			strconv.Itoa(row.HighRisk),
			strconv.Itoa(row.ModerateRisk),
			strconv.Itoa(row.LowRisk),
			strconv.Itoa(row.NoMatch),
			strconv.Itoa(row.TechnicalAppraisal),
			strconv.Itoa(row.OtherRisk),
		})
	}
	return t
}

// MediaOf returns the first folder under root that contains path.
func MediaOf(path, root string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	media, rest, found := strings.Cut(rel, string(filepath.Separator))
	if !found || rest == "" {
		return "", false
	}
	return media, true
}
