package testsupport

import (
	"path/filepath"
	"testing"

	"formatrisk/internal/config"
)

// NARACSV is a small NARA risk table covering every match rule.
const NARACSV = `Format Name,File Extension(s),Category/Plan(s),PRONOM URL,Risk Level,Proposed Preservation Plan
Portable Document Format 1.4,pdf,Text,https://www.nationalarchives.gov.uk/pronom/fmt/18,Moderate Risk,Transform to PDF/A
Portable Document Format version 1.4,pdf,Text,https://www.nationalarchives.gov.uk/pronom/fmt/18,Moderate Risk,Transform to PDF/A
JPEG File Interchange Format 1.01,jpg|jpeg,Image,https://www.nationalarchives.gov.uk/pronom/fmt/43,Low Risk,Retain
Exchangeable Image File Format (Compressed) 2.2,jpg,Image,,Low Risk,Transform to TIFF
Plain text,txt,Text,https://www.nationalarchives.gov.uk/pronom/x-fmt/111,Low Risk,Retain
ZIP Format,zip,Archive,,Moderate Risk,Retain and extract
Microsoft Word for Windows Document,doc,Text,,High Risk,Transform to PDF
Microsoft Word for Windows Document,doc,Text,,High Risk,Transform to DOCX
`

// OtherRiskCSV lists formats carrying a non-NARA risk.
const OtherRiskCSV = `FITS_FORMAT,RISK_CRITERIA
ZIP Format,Archive format
Microsoft Word for Windows Document,Outdated format
`

// TechnicalAppraisalCSV lists formats usually removed during appraisal.
const TechnicalAppraisalCSV = `FITS_FORMAT,NOTES
Unknown Binary,Usually system files
Thumbs DB,Windows thumbnail cache
`

// WriteReferences writes the fixture tables into dir and returns a
// reference section pointing at them.
func WriteReferences(t testing.TB, dir string) config.Reference {
	t.Helper()

	ref := config.Reference{
		NARARiskCSV:           filepath.Join(dir, "NARA_PreservationActionPlan.csv"),
		OtherRiskCSV:          filepath.Join(dir, "Riskfileformats.csv"),
		TechnicalAppraisalCSV: filepath.Join(dir, "ITAfileformats.csv"),
	}
	for path, content := range map[string]string{
		ref.NARARiskCSV:           NARACSV,
		ref.OtherRiskCSV:          OtherRiskCSV,
		ref.TechnicalAppraisalCSV: TechnicalAppraisalCSV,
	} {
		WriteText(t, path, content)
	}
	return ref
}
