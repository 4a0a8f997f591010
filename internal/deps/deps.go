package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program formatrisk relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Resolved is the absolute executable path when Available.
	Resolved string
	Detail   string
}

// Requirements lists the programs an analysis run invokes. FITS is launched
// directly; Java is what the FITS launcher script starts, so a missing JVM
// is reported but left to FITS itself to fail on.
func Requirements(fitsBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FITS",
			Command:     fitsBinary,
			Description: "Required for format identification",
		},
		{
			Name:        "Java",
			Command:     "java",
			Description: "Runtime started by the FITS launcher",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Resolved = resolved
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
