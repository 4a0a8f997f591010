package risk

import (
	"path/filepath"
	"strings"

	"formatrisk/internal/idstore"
	"formatrisk/internal/reference"
)

// MatchType names the rule that joined a record to the NARA table.
type MatchType string

const (
	MatchPRONOM      MatchType = "PRONOM"
	MatchNameVersion MatchType = "Format Name and Version"
	MatchName        MatchType = "Format Name"
	MatchExtension   MatchType = "File Extension"
	MatchNone        MatchType = "No NARA Match"
)

// Joined is an identification record paired with one NARA row.
type Joined struct {
	idstore.Record
	NARAFormatName string
	NARAExtensions string
	NARAPronomURL  string
	RiskLevel      reference.RiskLevel
	Plan           string
	MatchType      MatchType
}

// Match joins every record to the NARA table. The first rule that finds at
// least one row wins and every row it finds is emitted; a record nothing
// matches yields exactly one No Match row. Output is grouped by record in
// input order, rows within a record in table order.
func Match(records []idstore.Record, idx *reference.Index) []Joined {
	out := make([]Joined, 0, len(records))
	for _, rec := range records {
		rows, matchType := lookup(rec, idx)
		if len(rows) == 0 {
			out = append(out, Joined{Record: rec, RiskLevel: reference.NoMatch, MatchType: MatchNone})
			continue
		}
		for _, row := range rows {
			out = append(out, Joined{
				Record:         rec,
				NARAFormatName: row.FormatName,
				NARAExtensions: strings.Join(row.Extensions, "|"),
				NARAPronomURL:  strings.Join(row.PronomURLs, "|"),
				RiskLevel:      row.RiskLevel,
				Plan:           row.Plan,
				MatchType:      matchType,
			})
		}
	}
	return out
}

func lookup(rec idstore.Record, idx *reference.Index) ([]reference.NARARow, MatchType) {
	if idx == nil {
		return nil, MatchNone
	}
	if rows := idx.ByPUID(rec.PUID); len(rows) > 0 {
		return rows, MatchPRONOM
	}
	if rec.FormatVersion != "" {
		if rows := idx.ByName(rec.FormatName + " " + rec.FormatVersion); len(rows) > 0 {
			return rows, MatchNameVersion
		}
	}
	if rows := idx.ByName(rec.FormatName); len(rows) > 0 {
		return rows, MatchName
	}
	if rows := idx.ByExtension(Extension(rec.Path)); len(rows) > 0 {
		return rows, MatchExtension
	}
	return nil, MatchNone
}

// Extension returns the lower-cased extension of path without its dot, or
// "" when the final path element has none.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
