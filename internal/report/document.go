package report

import (
	"path/filepath"
	"time"

	"formatrisk/internal/appraisal"
)

// Document is the full analysis for one accession.
type Document struct {
	Accession string
	Generated time.Time
	Totals    Totals
	Sheets    []Table
}

// Sheet returns the named sheet.
func (d *Document) Sheet(name string) (Table, bool) {
	for _, s := range d.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Table{}, false
}

// Build computes every sheet from the classified results of the accession
// rooted at root. generated is the timestamp printed in rendered reports.
func Build(results []appraisal.Result, root string, generated time.Time) *Document {
	totals := ComputeTotals(results)
	return &Document{
		Accession: filepath.Base(filepath.Clean(root)),
		Generated: generated,
		Totals:    totals,
		Sheets: []Table{
			Subtotal(SheetFormatSubtotals, results, []Column{ColFormatName, ColRiskLevel}, totals),
			Subtotal(SheetRiskSubtotals, results, []Column{ColRiskLevel}, totals),
			Subtotal(SheetTASubtotals, results, []Column{ColTechnicalAppraisal, ColFormatName}, totals),
			Subtotal(SheetOtherSubtotals, results, []Column{ColOtherRisk, ColFormatName}, totals),
			MediaSubtotal(results, root),
			NARARisk(results),
			TechnicalAppraisal(results),
			OtherRisks(results),
			MultipleFormats(results),
			Duplicates(results),
			Validation(results),
		},
	}
}
