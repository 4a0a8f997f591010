package manifest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

// DefaultLongPathLimit is the Windows MAX_PATH length bagging tools trip over.
const DefaultLongPathLimit = 260

var longPathHeader = []string{"Orig_path", "Orig_path_len", "New_path", "Date_changed"}

// LongPath is a file whose absolute path exceeds the limit.
type LongPath struct {
	Path   string
	Length int
}

// FindLongPaths lists files under root whose absolute path is longer than
// limit characters and writes them to file-path-changes.csv inside root. The
// New_path and Date_changed columns are left for the archivist to fill in
// as paths are shortened.
func FindLongPaths(root string, limit int) (string, []LongPath, error) {
	if limit <= 0 {
		limit = DefaultLongPathLimit
	}
	abs, err := resolveRoot(root)
	if err != nil {
		return "", nil, services.Wrap(services.ErrNotFound, "manifest", "long paths", "accession directory unavailable", err)
	}
	entries, err := Scan(abs)
	if err != nil {
		return "", nil, err
	}

	var found []LongPath
	rows := [][]string{}
	for _, entry := range entries {
		length := utf8.RuneCountInString(entry.Path)
		if length <= limit {
			continue
		}
		found = append(found, LongPath{Path: entry.Path, Length: length})
		rows = append(rows, []string{entry.Path, strconv.Itoa(length), "", ""})
	}

	target := filepath.Join(abs, LongPathLog)
	if err := tabular.Write(target, longPathHeader, rows); err != nil {
		return "", nil, fmt.Errorf("write long path log: %w", err)
	}
	return target, found, nil
}
