package report

import (
	"formatrisk/internal/appraisal"
	"formatrisk/internal/idstore"
	"formatrisk/internal/reference"
)

// Sheet names.
const (
	SheetFormatSubtotals = "Format Subtotals"
	SheetRiskSubtotals   = "NARA Risk Subtotals"
	SheetTASubtotals     = "Tech Appraisal Subtotals"
	SheetOtherSubtotals  = "Other Risk Subtotals"
	SheetMediaSubtotals  = "Media Subtotals"
	SheetNARARisk        = "NARA Risk"
	SheetTechAppraisal   = "For Technical Appraisal"
	SheetOtherRisks      = "Other Risks"
	SheetMultipleFormats = "Multiple Formats"
	SheetDuplicates      = "Duplicates"
	SheetValidation      = "Validation"
)

func filter(results []appraisal.Result, keep func(appraisal.Result) bool) []appraisal.Result {
	var out []appraisal.Result
	for _, r := range results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func subset(name string, results []appraisal.Result, columns []Column) Table {
	return Table{Name: name, Header: header(columns), Rows: project(results, columns)}
}

// NARARisk lists rows above the lowest NARA risk level.
func NARARisk(results []appraisal.Result) Table {
	columns := without(ColFormatName, ColFormatVersion, ColPUID, ColTools, ColCreatingApplication,
		ColValid, ColWellFormed, ColStatusMessage)
	return subset(SheetNARARisk, filter(results, func(r appraisal.Result) bool {
		return r.RiskLevel != reference.LowRisk
	}), columns)
}

// MultipleFormats lists rows for files that appear more than once.
func MultipleFormats(results []appraisal.Result) Table {
	counts := map[string]int{}
	for _, r := range results {
		counts[r.Path]++
	}
	t := subset(SheetMultipleFormats, filter(results, func(r appraisal.Result) bool {
		return counts[r.Path] > 1
	}), without(ColValid, ColWellFormed, ColStatusMessage))
	t.Rows = dedupeRows(t.Rows)
	return t
}

// Validation lists rows FITS flagged as invalid, not well-formed, or with a
// status message. Any one condition qualifies.
func Validation(results []appraisal.Result) Table {
	return subset(SheetValidation, filter(results, func(r appraisal.Result) bool {
		return r.Valid == idstore.FlagFalse || r.WellFormed == idstore.FlagFalse || r.StatusMessage != ""
	}), AllColumns)
}

// TechnicalAppraisal lists rows labelled for technical appraisal.
func TechnicalAppraisal(results []appraisal.Result) Table {
	columns := without(ColPUID, ColDateModified, ColMD5, ColValid, ColWellFormed, ColStatusMessage)
	return subset(SheetTechAppraisal, filter(results, func(r appraisal.Result) bool {
		return r.TechnicalAppraisal != appraisal.NotForTA
	}), columns)
}

// OtherRisks lists rows with an other risk label.
func OtherRisks(results []appraisal.Result) Table {
	columns := without(ColPUID, ColDateModified, ColMD5, ColCreatingApplication, ColValid, ColWellFormed, ColStatusMessage)
	return subset(SheetOtherRisks, filter(results, func(r appraisal.Result) bool {
		return r.OtherRisk != appraisal.NotForOther
	}), columns)
}

// Duplicates lists files whose content hash is shared with another file.
// Rows are first reduced to one per path, so a file with several
// identifications does not count as its own duplicate.
func Duplicates(results []appraisal.Result) Table {
	columns := []Column{ColFilePath, ColSizeKB, ColMD5}
	seenPath := map[string]struct{}{}
	var unique []appraisal.Result
	for _, r := range results {
		if _, dup := seenPath[r.Path]; dup {
			continue
		}
		seenPath[r.Path] = struct{}{}
		unique = append(unique, r)
	}
	hashes := map[string]int{}
	for _, r := range unique {
		if r.MD5 != "" {
			hashes[r.MD5]++
		}
	}
	return subset(SheetDuplicates, filter(unique, func(r appraisal.Result) bool {
		return r.MD5 != "" && hashes[r.MD5] > 1
	}), columns)
}
