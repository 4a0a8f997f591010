package preflight

import (
	"errors"
	"fmt"
	"strings"

	"formatrisk/internal/config"
	"formatrisk/internal/deps"
	"formatrisk/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results never block a run.
	Optional bool
	marker   error
}

// Target names the directories a run reads and writes.
type Target struct {
	Accession string
	OutputDir string
}

// RunAll executes every check for the given config. Directory checks are
// skipped for empty target fields.
func RunAll(cfg *config.Config, target Target) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg.FITSBinary())) {
		results = append(results, fromStatus(status))
	}
	results = append(results, CheckReferences(cfg)...)
	if target.Accession != "" {
		results = append(results, CheckReadableDirectory("Accession directory", target.Accession))
	}
	if target.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", target.OutputDir))
	}
	return results
}

// Failures folds the failed, non-optional results into one error. The error
// carries the most severe marker: a missing tool outranks bad input.
func Failures(results []Result) error {
	var (
		lines  []string
		marker error
	)
	for _, r := range results {
		if r.Passed || r.Optional {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		if marker == nil || errors.Is(r.marker, services.ErrToolUnavailable) {
			marker = r.marker
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return services.Wrap(marker, "preflight", "", strings.Join(lines, "; "), nil)
}

func fromStatus(status deps.Status) Result {
	result := Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		marker:   services.ErrToolUnavailable,
	}
	if status.Available {
		result.Detail = status.Resolved
	} else {
		result.Detail = status.Detail
	}
	return result
}
