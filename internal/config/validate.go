package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"formatrisk/internal/services"
)

// ValidationError lists every configuration problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid configuration (%d problems):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Unwrap lets callers classify the error with errors.Is(err, services.ErrConfiguration).
func (e *ValidationError) Unwrap() error {
	return services.ErrConfiguration
}

// Validate ensures the configuration is usable. It does not touch the
// filesystem; see CheckInputs for that.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.validateFITS()...)
	problems = append(problems, c.validateReference()...)
	problems = append(problems, c.validateReport()...)
	problems = append(problems, c.validateManifest()...)
	problems = append(problems, c.validateLogging()...)
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// CheckInputs verifies that every configured input file exists and is a
// regular file. All problems are reported together.
func (c *Config) CheckInputs() error {
	var problems []string
	for _, input := range c.referenceInputs() {
		if input.value == "" {
			continue
		}
		info, err := os.Stat(input.value)
		switch {
		case err != nil && os.IsNotExist(err):
			problems = append(problems, fmt.Sprintf("%s path %q does not exist", input.key, input.value))
		case err != nil:
			problems = append(problems, fmt.Sprintf("%s path %q: %v", input.key, input.value, err))
		case info.IsDir():
			problems = append(problems, fmt.Sprintf("%s path %q is a directory", input.key, input.value))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

type namedInput struct {
	key   string
	value string
}

func (c *Config) referenceInputs() []namedInput {
	return []namedInput{
		{"reference.nara_risk_csv", c.Reference.NARARiskCSV},
		{"reference.other_risk_csv", c.Reference.OtherRiskCSV},
		{"reference.technical_appraisal_csv", c.Reference.TechnicalAppraisalCSV},
	}
}

func (c *Config) validateFITS() []string {
	if strings.TrimSpace(c.FITS.Binary) == "" {
		return []string{"fits.binary must be set (or export FITS_BINARY)"}
	}
	return nil
}

func (c *Config) validateReference() []string {
	var problems []string
	for _, input := range c.referenceInputs() {
		if input.value == "" {
			problems = append(problems, fmt.Sprintf("%s must be set", input.key))
		}
	}
	return problems
}

func (c *Config) validateReport() []string {
	if len(c.Report.Formats) == 0 {
		return []string{"report.formats must include at least one of " + strings.Join(ReportFormats, ", ")}
	}
	var problems []string
	for _, format := range c.Report.Formats {
		if !slices.Contains(ReportFormats, format) {
			problems = append(problems, fmt.Sprintf("report.formats: unsupported value %q", format))
		}
	}
	return problems
}

func (c *Config) validateManifest() []string {
	return ensurePositiveMap(map[string]int{
		"manifest.long_path_limit": c.Manifest.LongPathLimit,
	})
}

func (c *Config) validateLogging() []string {
	var problems []string
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}
	return problems
}

func ensurePositiveMap(values map[string]int) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	var problems []string
	for _, key := range keys {
		if values[key] <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive", key))
		}
	}
	return problems
}
