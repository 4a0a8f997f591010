package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

var (
	manifestHeader = []string{"File", "SizeKB", "DateCreated", "DateModified", "Notes"}
	deletionHeader = []string{"File", "SizeKB", "DateCreated", "DateDeleted", "Notes"}
)

// ErrExists is returned by WriteInitial when today's manifest is already
// present and overwriting was not requested.
var ErrExists = errors.New("manifest already exists")

// InitialName returns the manifest file name for the given day.
func InitialName(now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", InitialPrefix, now.Format(stampLayout))
}

// DeletionName returns the deletion log file name for the given day.
func DeletionName(now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", DeletionPrefix, now.Format(stampLayout))
}

// InitialOption customizes WriteInitial.
type InitialOption func(*initialOptions)

type initialOptions struct {
	overwrite bool
}

// WithOverwrite replaces an existing manifest for the same day.
func WithOverwrite() InitialOption {
	return func(o *initialOptions) { o.overwrite = true }
}

// WriteInitial records every file in root into initialmanifest_YYYYMMDD.csv
// inside root and returns the manifest path and the number of files listed.
func WriteInitial(root string, now time.Time, opts ...InitialOption) (string, int, error) {
	var options initialOptions
	for _, opt := range opts {
		opt(&options)
	}
	root, err := resolveRoot(root)
	if err != nil {
		return "", 0, services.Wrap(services.ErrNotFound, "manifest", "init", "accession directory unavailable", err)
	}

	target := filepath.Join(root, InitialName(now))
	if !options.overwrite {
		if _, err := os.Stat(target); err == nil {
			return target, 0, fmt.Errorf("%w: %s", ErrExists, filepath.Base(target))
		}
	}

	entries, err := Scan(root)
	if err != nil {
		return "", 0, err
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Path,
			formatKB(entry.SizeKB),
			formatDate(entry.Created),
			formatDate(entry.Modified),
			"",
		})
	}
	if err := tabular.Write(target, manifestHeader, rows); err != nil {
		return "", 0, fmt.Errorf("write manifest: %w", err)
	}
	return target, len(rows), nil
}

// LatestInitial returns the newest initial manifest in root.
func LatestInitial(root string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, InitialPrefix+"_*.csv"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "manifest", "compare", "no initial manifest in "+root+"; run manifest init first", nil)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Deleted is one manifest entry that no longer exists on disk.
type Deleted struct {
	Path        string
	SizeKB      string
	DateCreated string
	Notes       string
}

// CompareDeleted compares the newest initial manifest against the files
// currently in root and writes deletionlog_YYYYMMDD.csv listing the entries
// that are gone. The log is written even when nothing was deleted.
func CompareDeleted(root string, now time.Time) (string, []Deleted, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return "", nil, services.Wrap(services.ErrNotFound, "manifest", "compare", "accession directory unavailable", err)
	}
	manifestPath, err := LatestInitial(root)
	if err != nil {
		return "", nil, err
	}
	table, _, err := tabular.Read(manifestPath)
	if err != nil {
		return "", nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := table.Require("File"); err != nil {
		return "", nil, services.Wrap(services.ErrValidation, "manifest", "compare", filepath.Base(manifestPath), err)
	}

	entries, err := Scan(root)
	if err != nil {
		return "", nil, err
	}
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.Path] = struct{}{}
	}

	var deleted []Deleted
	for _, row := range table.Rows {
		path := table.Value(row, "File")
		if path == "" || isLog(filepath.Base(path)) {
			continue
		}
		if _, ok := present[path]; ok {
			continue
		}
		deleted = append(deleted, Deleted{
			Path:        path,
			SizeKB:      table.Value(row, "SizeKB"),
			DateCreated: table.Value(row, "DateCreated"),
			Notes:       table.Value(row, "Notes"),
		})
	}

	day := now.Format(dateLayout)
	rows := make([][]string, 0, len(deleted))
	for _, d := range deleted {
		rows = append(rows, []string{d.Path, d.SizeKB, d.DateCreated, day, d.Notes})
	}
	target := filepath.Join(root, DeletionName(now))
	if err := tabular.Write(target, deletionHeader, rows); err != nil {
		return "", nil, fmt.Errorf("write deletion log: %w", err)
	}
	return target, deleted, nil
}
