package reference

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"formatrisk/internal/config"
	"formatrisk/internal/tabular"
	"formatrisk/internal/textutil"
)

// RiskLevel is a NARA preservation risk classification.
type RiskLevel string

const (
	NoMatch      RiskLevel = "No Match"
	LowRisk      RiskLevel = "Low Risk"
	ModerateRisk RiskLevel = "Moderate Risk"
	HighRisk     RiskLevel = "High Risk"
)

// RiskLevels lists the levels from lowest to highest.
var RiskLevels = []RiskLevel{NoMatch, LowRisk, ModerateRisk, HighRisk}

// Rank orders risk levels; unknown levels rank -1.
func (r RiskLevel) Rank() int {
	for i, level := range RiskLevels {
		if level == r {
			return i
		}
	}
	return -1
}

func parseRiskLevel(value string) (RiskLevel, bool) {
	for _, level := range RiskLevels {
		if textutil.EqualFold(string(level), strings.TrimSpace(value)) {
			return level, true
		}
	}
	return "", false
}

// NARA table columns.
const (
	ColFormatName = "Format Name"
	ColExtensions = "File Extension(s)"
	ColPronomURL  = "PRONOM URL"
	ColRiskLevel  = "Risk Level"
	ColPlan       = "Proposed Preservation Plan"
)

// Keyword table columns.
const (
	ColFITSFormat   = "FITS_FORMAT"
	ColRiskCriteria = "RISK_CRITERIA"
	ColNotes        = "NOTES"
)

// NARARow is one row of the NARA Digital Preservation Framework risk table.
type NARARow struct {
	FormatName string
	Extensions []string
	PronomURLs []string
	RiskLevel  RiskLevel
	Plan       string
}

// OtherRisk maps a FITS format name to a named risk criterion.
type OtherRisk struct {
	Format   string
	Criteria string
}

// Repair is a tabular repair attributed to the dataset it came from.
type Repair struct {
	Dataset string
	tabular.Repair
}

// LoadNARA reads the NARA risk table. Rows without a risk level are skipped
// since they can never produce a match.
func LoadNARA(path string) ([]NARARow, []tabular.Repair, error) {
	rows, repairs, problems, err := loadNARA(path)
	if err != nil {
		return nil, repairs, err
	}
	if len(problems) > 0 {
		return nil, repairs, &config.ValidationError{Problems: problems}
	}
	return rows, repairs, nil
}

func loadNARA(path string) ([]NARARow, []tabular.Repair, []string, error) {
	table, repairs, err := tabular.Read(path)
	if err != nil {
		return nil, repairs, nil, err
	}
	if missing := table.Missing(ColFormatName, ColExtensions, ColPronomURL, ColRiskLevel, ColPlan); len(missing) > 0 {
		return nil, repairs, []string{missingProblem(path, missing)}, nil
	}
	var problems []string
	rows := make([]NARARow, 0, len(table.Rows))
	for i, record := range table.Rows {
		raw := strings.TrimSpace(table.Value(record, ColRiskLevel))
		if raw == "" {
			continue
		}
		level, ok := parseRiskLevel(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s line %d: unknown %s %q", filepath.Base(path), i+2, ColRiskLevel, raw))
			continue
		}
		rows = append(rows, NARARow{
			FormatName: strings.TrimSpace(table.Value(record, ColFormatName)),
			Extensions: splitExtensions(table.Value(record, ColExtensions)),
			PronomURLs: splitList(table.Value(record, ColPronomURL)),
			RiskLevel:  level,
			Plan:       strings.TrimSpace(table.Value(record, ColPlan)),
		})
	}
	return rows, repairs, problems, nil
}

// LoadOtherRisk reads the format risk criteria table.
func LoadOtherRisk(path string) ([]OtherRisk, []tabular.Repair, error) {
	rows, repairs, problems, err := loadOtherRisk(path)
	if err != nil {
		return nil, repairs, err
	}
	if len(problems) > 0 {
		return nil, repairs, &config.ValidationError{Problems: problems}
	}
	return rows, repairs, nil
}

func loadOtherRisk(path string) ([]OtherRisk, []tabular.Repair, []string, error) {
	table, repairs, err := tabular.Read(path)
	if err != nil {
		return nil, repairs, nil, err
	}
	if missing := table.Missing(ColFITSFormat, ColRiskCriteria); len(missing) > 0 {
		return nil, repairs, []string{missingProblem(path, missing)}, nil
	}
	rows := make([]OtherRisk, 0, len(table.Rows))
	for _, record := range table.Rows {
		format := strings.TrimSpace(table.Value(record, ColFITSFormat))
		if format == "" {
			continue
		}
		rows = append(rows, OtherRisk{
			Format:   format,
			Criteria: strings.TrimSpace(table.Value(record, ColRiskCriteria)),
		})
	}
	return rows, repairs, nil, nil
}

// LoadTechnicalAppraisal reads the technical appraisal format keywords.
func LoadTechnicalAppraisal(path string) ([]string, []tabular.Repair, error) {
	keywords, repairs, problems, err := loadTechnicalAppraisal(path)
	if err != nil {
		return nil, repairs, err
	}
	if len(problems) > 0 {
		return nil, repairs, &config.ValidationError{Problems: problems}
	}
	return keywords, repairs, nil
}

func loadTechnicalAppraisal(path string) ([]string, []tabular.Repair, []string, error) {
	table, repairs, err := tabular.Read(path)
	if err != nil {
		return nil, repairs, nil, err
	}
	if missing := table.Missing(ColFITSFormat); len(missing) > 0 {
		return nil, repairs, []string{missingProblem(path, missing)}, nil
	}
	keywords := make([]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		if keyword := strings.TrimSpace(table.Value(record, ColFITSFormat)); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords, repairs, nil, nil
}

// Set bundles the three reference datasets a run needs.
type Set struct {
	NARA               *Index
	OtherRisk          []OtherRisk
	TechnicalAppraisal []string
}

// LoadAll reads every configured dataset and reports all problems together
// as a *config.ValidationError.
func LoadAll(ref config.Reference) (*Set, []Repair, error) {
	var (
		set      Set
		repairs  []Repair
		problems []string
	)
	collect := func(dataset string, fixed []tabular.Repair, found []string, err error) bool {
		for _, r := range fixed {
			repairs = append(repairs, Repair{Dataset: dataset, Repair: r})
		}
		problems = append(problems, found...)
		if err != nil {
			problems = append(problems, readProblem(dataset, err))
			return false
		}
		return len(found) == 0
	}

	nara, fixed, found, err := loadNARA(ref.NARARiskCSV)
	if collect(ref.NARARiskCSV, fixed, found, err) {
		set.NARA = NewIndex(nara)
	}
	other, fixed, found, err := loadOtherRisk(ref.OtherRiskCSV)
	if collect(ref.OtherRiskCSV, fixed, found, err) {
		set.OtherRisk = other
	}
	ita, fixed, found, err := loadTechnicalAppraisal(ref.TechnicalAppraisalCSV)
	if collect(ref.TechnicalAppraisalCSV, fixed, found, err) {
		set.TechnicalAppraisal = ita
	}

	if len(problems) > 0 {
		return nil, repairs, &config.ValidationError{Problems: problems}
	}
	return &set, repairs, nil
}

func missingProblem(path string, missing []string) string {
	quoted := make([]string, len(missing))
	for i, column := range missing {
		quoted[i] = fmt.Sprintf("%q", column)
	}
	return fmt.Sprintf("%s is missing required column(s) %s", filepath.Base(path), strings.Join(quoted, ", "))
}

func readProblem(path string, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("%s does not exist", path)
	}
	return fmt.Sprintf("%s: %v", filepath.Base(path), err)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitExtensions(value string) []string {
	parts := splitList(value)
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.TrimPrefix(part, "."))
	}
	return parts
}
