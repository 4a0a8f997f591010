// Package appraisal labels risk rows for technical appraisal and for risks
// the NARA table does not capture.
package appraisal

import (
	"strings"

	"formatrisk/internal/reference"
	"formatrisk/internal/risk"
	"formatrisk/internal/textutil"
)

// Technical appraisal labels.
const (
	TechnicalAppraisalFormat = "Format"
	TechnicalAppraisalTrash  = "Trash"
	NotForTA                 = "Not for TA"
)

// Other risk labels. Criteria from the risk table are used verbatim.
const (
	NARALowTransform = "NARA Low/Transform"
	NotForOther      = "Not for Other"
)

// Result is a risk row with both classification labels.
type Result struct {
	risk.Row
	TechnicalAppraisal string
	OtherRisk          string
}

// Classifier assigns technical appraisal and other risk labels.
type Classifier struct {
	formats []string
	trash   map[string]struct{}
	other   map[string]string
}

// New builds a classifier. Format keywords match anywhere in a format name;
// trash keywords must equal a whole directory name; risk table formats must
// equal the whole format name. All comparisons ignore case.
func New(itaKeywords, trashKeywords []string, otherRisk []reference.OtherRisk) *Classifier {
	c := &Classifier{
		trash: map[string]struct{}{},
		other: map[string]string{},
	}
	for _, keyword := range itaKeywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			c.formats = append(c.formats, keyword)
		}
	}
	for _, keyword := range trashKeywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			c.trash[textutil.Fold(keyword)] = struct{}{}
		}
	}
	for _, entry := range otherRisk {
		key := textutil.Fold(strings.TrimSpace(entry.Format))
		if _, exists := c.other[key]; !exists && key != "" {
			c.other[key] = entry.Criteria
		}
	}
	return c
}

// Classify labels every row. Rows are returned in input order.
func (c *Classifier) Classify(rows []risk.Row) []Result {
	out := make([]Result, len(rows))
	for i, row := range rows {
		out[i] = Result{
			Row:                row,
			TechnicalAppraisal: c.TechnicalAppraisal(row.Path, row.FormatName),
			OtherRisk:          c.OtherRisk(row),
		}
	}
	return out
}

// TechnicalAppraisal returns Trash when a directory in path is a trash
// folder, Format when formatName contains an appraisal keyword, and
// Not for TA otherwise. Trash wins when both apply.
func (c *Classifier) TechnicalAppraisal(path, formatName string) string {
	if c.inTrash(path) {
		return TechnicalAppraisalTrash
	}
	for _, keyword := range c.formats {
		if textutil.ContainsFold(formatName, keyword) {
			return TechnicalAppraisalFormat
		}
	}
	return NotForTA
}

// OtherRisk returns the risk table criterion for the row's format, else
// NARA Low/Transform for low risk rows planned for transformation, else
// Not for Other.
func (c *Classifier) OtherRisk(row risk.Row) string {
	if criteria, ok := c.other[textutil.Fold(strings.TrimSpace(row.FormatName))]; ok {
		return criteria
	}
	if row.RiskLevel == reference.LowRisk && strings.HasPrefix(row.Plan, "Transform") {
		return NARALowTransform
	}
	return NotForOther
}

func (c *Classifier) inTrash(path string) bool {
	if len(c.trash) == 0 {
		return false
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(segments) == 0 {
		return false
	}
	// The last segment is the file itself.
	for _, segment := range segments[:len(segments)-1] {
		if _, ok := c.trash[textutil.Fold(segment)]; ok {
			return true
		}
	}
	return false
}
