package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"formatrisk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and fixture reference tables. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Reference = WriteReferences(t, filepath.Join(base, "reference"))

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithReportFormats overrides the report formats on the test config.
func WithReportFormats(formats ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.Formats = formats
	}
}

// WithKeepXML keeps FITS artifacts after a run.
func WithKeepXML() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FITS.KeepXML = true
	}
}

// WithFITSBinary overrides the FITS launcher path.
func WithFITSBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FITS.Binary = path
	}
}

// WithStubbedBinaries puts do-nothing executables with the given names at
// the front of PATH for the rest of the test. With no names the configured
// FITS launcher is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.FITS.Binary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			WriteText(b.t, target, "#!/bin/sh\nexit 0\n")
			if err := os.Chmod(target, 0o755); err != nil {
				b.t.Fatalf("chmod stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
