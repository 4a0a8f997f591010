package risk

import (
	"formatrisk/internal/idstore"
	"formatrisk/internal/reference"
)

// Row is a joined record with the NARA row's identity dropped. Rows are
// comparable, so two rows are duplicates exactly when they are equal.
type Row struct {
	idstore.Record
	RiskLevel reference.RiskLevel
	Plan      string
	MatchType MatchType
}

// Project drops the reference identity fields from joined rows.
func Project(joined []Joined) []Row {
	rows := make([]Row, len(joined))
	for i, j := range joined {
		rows[i] = Row{Record: j.Record, RiskLevel: j.RiskLevel, Plan: j.Plan, MatchType: j.MatchType}
	}
	return rows
}

// Dedupe removes exact duplicate rows, keeping the first of each. Rows that
// disagree on risk level or plan for the same file are all kept.
func Dedupe(rows []Row) []Row {
	seen := make(map[Row]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	return out
}

// Collapse projects and deduplicates joined rows.
func Collapse(joined []Joined) []Row {
	return Dedupe(Project(joined))
}
