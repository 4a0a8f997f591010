package idsync

import (
	"io/fs"
	"path/filepath"
	"sort"

	"formatrisk/internal/idstore"
	"formatrisk/internal/tabular"
)

// SyncPlan describes how a run reconciled the store with the accession.
type SyncPlan struct {
	// Bulk is set when no prior store existed and the whole tree was
	// identified in one FITS invocation.
	Bulk  bool
	New   []string
	Stale []string
	Kept  []string
	// Repairs lists store rows whose undecodable bytes were dropped.
	Repairs []tabular.Repair
	// Skipped lists artifacts that could not be parsed and files FITS exited
	// with an error on. They have no records and will be identified again on
	// the next run.
	Skipped []string
}

// Plan splits paths into new, stale, and kept against the prior store.
// A nil or never-saved prior store makes every current path new and marks
// the plan as bulk. All lists are sorted.
func Plan(current []string, prior *idstore.Store) SyncPlan {
	known := prior.Paths()
	plan := SyncPlan{Bulk: !prior.Exists()}
	present := make(map[string]struct{}, len(current))
	for _, path := range current {
		if _, dup := present[path]; dup {
			continue
		}
		present[path] = struct{}{}
		if _, ok := known[path]; ok {
			plan.Kept = append(plan.Kept, path)
		} else {
			plan.New = append(plan.New, path)
		}
	}
	for path := range known {
		if _, ok := present[path]; !ok {
			plan.Stale = append(plan.Stale, path)
		}
	}
	sort.Strings(plan.New)
	sort.Strings(plan.Stale)
	sort.Strings(plan.Kept)
	return plan
}

// ListFiles returns every regular file under root as an absolute path,
// sorted. Directories in exclude are not descended into.
func ListFiles(root string, exclude []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, dir := range exclude {
		if abs, err := filepath.Abs(dir); err == nil {
			skip[abs] = struct{}{}
		}
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, ok := skip[path]; ok && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
