package reference

import (
	"strings"

	"formatrisk/internal/textutil"
)

// Index answers the lookups the risk matcher needs. Every lookup returns
// rows in table order.
type Index struct {
	rows   []NARARow
	byPUID map[string][]int
	byName map[string][]int
	byExt  map[string][]int
}

// NewIndex builds an index over rows. Identifier keys are exact; name and
// extension keys are case-insensitive.
func NewIndex(rows []NARARow) *Index {
	idx := &Index{
		rows:   rows,
		byPUID: map[string][]int{},
		byName: map[string][]int{},
		byExt:  map[string][]int{},
	}
	for i, row := range rows {
		for _, url := range row.PronomURLs {
			idx.byPUID[url] = appendOnce(idx.byPUID[url], i)
		}
		if row.FormatName != "" {
			key := textutil.Fold(row.FormatName)
			idx.byName[key] = appendOnce(idx.byName[key], i)
		}
		for _, ext := range row.Extensions {
			idx.byExt[ext] = appendOnce(idx.byExt[ext], i)
		}
	}
	return idx
}

// Len returns the number of indexed rows.
func (i *Index) Len() int {
	return len(i.rows)
}

// ByPUID returns rows whose PRONOM URL equals puid exactly.
func (i *Index) ByPUID(puid string) []NARARow {
	if puid == "" {
		return nil
	}
	return i.collect(i.byPUID[puid])
}

// ByName returns rows whose format name equals name, ignoring case.
func (i *Index) ByName(name string) []NARARow {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return i.collect(i.byName[textutil.Fold(name)])
}

// ByExtension returns rows listing ext, ignoring case and a leading dot.
func (i *Index) ByExtension(ext string) []NARARow {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return nil
	}
	return i.collect(i.byExt[ext])
}

func (i *Index) collect(positions []int) []NARARow {
	if len(positions) == 0 {
		return nil
	}
	out := make([]NARARow, len(positions))
	for n, pos := range positions {
		out[n] = i.rows[pos]
	}
	return out
}

// appendOnce keeps a row from being listed twice when it repeats a key.
func appendOnce(positions []int, pos int) []int {
	if n := len(positions); n > 0 && positions[n-1] == pos {
		return positions
	}
	return append(positions, pos)
}
