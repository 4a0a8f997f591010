package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFITS()
	if err := c.normalizeReference(); err != nil {
		return err
	}
	c.normalizeAppraisal()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFITS() {
	if value, ok := os.LookupEnv("FITS_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.FITS.Binary = value
	}
	c.FITS.Binary = strings.TrimSpace(c.FITS.Binary)
	// A bare command name is resolved through PATH; only expand real paths.
	if strings.ContainsAny(c.FITS.Binary, `/\`) || strings.HasPrefix(c.FITS.Binary, "~") {
		if expanded, err := expandPath(c.FITS.Binary); err == nil {
			c.FITS.Binary = expanded
		}
	}
}

func (c *Config) normalizeReference() error {
	fields := []struct {
		key   string
		env   string
		value *string
	}{
		{"reference.nara_risk_csv", "FORMATRISK_NARA_CSV", &c.Reference.NARARiskCSV},
		{"reference.other_risk_csv", "FORMATRISK_RISK_CSV", &c.Reference.OtherRiskCSV},
		{"reference.technical_appraisal_csv", "FORMATRISK_ITA_CSV", &c.Reference.TechnicalAppraisalCSV},
	}
	for _, field := range fields {
		if value, ok := os.LookupEnv(field.env); ok && strings.TrimSpace(value) != "" {
			*field.value = value
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeAppraisal() {
	keywords := make([]string, 0, len(c.Appraisal.TrashKeywords))
	seen := make(map[string]struct{}, len(c.Appraisal.TrashKeywords))
	for _, keyword := range c.Appraisal.TrashKeywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	c.Appraisal.TrashKeywords = keywords
}

func (c *Config) normalizeReport() {
	formats := make([]string, 0, len(c.Report.Formats))
	seen := make(map[string]struct{}, len(c.Report.Formats))
	for _, format := range c.Report.Formats {
		normalized := strings.ToLower(strings.TrimSpace(format))
		if normalized == "md" {
			normalized = "markdown"
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	c.Report.Formats = formats
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
