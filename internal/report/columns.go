package report

import (
	"formatrisk/internal/appraisal"
	"formatrisk/internal/idstore"
)

// Column is one named, rendered field of a classified result.
type Column struct {
	Name  string
	value func(appraisal.Result) string
}

// Value renders the column for r.
func (c Column) Value(r appraisal.Result) string {
	return c.value(r)
}

// Result columns, named the way archivists know them from earlier reports.
var (
	ColFilePath            = Column{"FITS_File_Path", func(r appraisal.Result) string { return r.Path }}
	ColFormatName          = Column{"FITS_Format_Name", func(r appraisal.Result) string { return r.FormatName }}
	ColFormatVersion       = Column{"FITS_Format_Version", func(r appraisal.Result) string { return r.FormatVersion }}
	ColPUID                = Column{"FITS_PUID", func(r appraisal.Result) string { return r.PUID }}
	ColTools               = Column{"FITS_Identifying_Tool(s)", func(r appraisal.Result) string { return r.Tools }}
	ColMultipleIDs         = Column{"FITS_Multiple_IDs", func(r appraisal.Result) string { return boolCell(r.MultipleIDs) }}
	ColDateModified        = Column{"FITS_Date_Last_Modified", func(r appraisal.Result) string { return r.DateModified }}
	ColSizeKB              = Column{"FITS_Size_KB", func(r appraisal.Result) string { return idstore.FormatSize(r.SizeKB) }}
	ColMD5                 = Column{"FITS_MD5", func(r appraisal.Result) string { return r.MD5 }}
	ColCreatingApplication = Column{"FITS_Creating_Application", func(r appraisal.Result) string { return r.CreatingApplication }}
	ColValid               = Column{"FITS_Valid", func(r appraisal.Result) string { return string(r.Valid) }}
	ColWellFormed          = Column{"FITS_Well-Formed", func(r appraisal.Result) string { return string(r.WellFormed) }}
	ColStatusMessage       = Column{"FITS_Status_Message", func(r appraisal.Result) string { return r.StatusMessage }}
	ColRiskLevel           = Column{"NARA_Risk Level", func(r appraisal.Result) string { return string(r.RiskLevel) }}
	ColPlan                = Column{"NARA_Proposed Preservation Plan", func(r appraisal.Result) string { return r.Plan }}
	ColMatchType           = Column{"NARA_Match_Type", func(r appraisal.Result) string { return string(r.MatchType) }}
	ColTechnicalAppraisal  = Column{"Technical_Appraisal", func(r appraisal.Result) string { return r.TechnicalAppraisal }}
	ColOtherRisk           = Column{"Other_Risk", func(r appraisal.Result) string { return r.OtherRisk }}
)

// AllColumns is the full result layout.
var AllColumns = []Column{
	ColFilePath,
	ColFormatName,
	ColFormatVersion,
	ColPUID,
	ColTools,
	ColMultipleIDs,
	ColDateModified,
	ColSizeKB,
	ColMD5,
	ColCreatingApplication,
	ColValid,
	ColWellFormed,
	ColStatusMessage,
	ColRiskLevel,
	ColPlan,
	ColMatchType,
	ColTechnicalAppraisal,
	ColOtherRisk,
}

// without returns AllColumns minus the dropped ones, keeping order.
func without(dropped ...Column) []Column {
	skip := make(map[string]struct{}, len(dropped))
	for _, c := range dropped {
		skip[c.Name] = struct{}{}
	}
	out := make([]Column, 0, len(AllColumns))
	for _, c := range AllColumns {
		if _, ok := skip[c.Name]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func header(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func project(results []appraisal.Result, columns []Column) [][]string {
	rows := make([][]string, len(results))
	for i, r := range results {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = c.value(r)
		}
		rows[i] = row
	}
	return rows
}

func boolCell(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
