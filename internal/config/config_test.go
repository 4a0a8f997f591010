package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"formatrisk/internal/config"
	"formatrisk/internal/services"
)

func setReferenceEnv(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("FORMATRISK_NARA_CSV", filepath.Join(dir, "nara.csv"))
	t.Setenv("FORMATRISK_RISK_CSV", filepath.Join(dir, "risk.csv"))
	t.Setenv("FORMATRISK_ITA_CSV", filepath.Join(dir, "ita.csv"))
}

func TestLoadDefaultConfigUsesEnvReferencesAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	setReferenceEnv(t, tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "formatrisk")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.FITSBinary() != "fits.sh" {
		t.Fatalf("expected bare fits binary to stay unexpanded, got %q", cfg.FITSBinary())
	}
	if cfg.Reference.NARARiskCSV != filepath.Join(tempHome, "nara.csv") {
		t.Fatalf("expected NARA path from env, got %q", cfg.Reference.NARARiskCSV)
	}
	if got := strings.Join(cfg.Appraisal.TrashKeywords, ","); got != "trash,trashes" {
		t.Fatalf("unexpected trash keywords: %q", got)
	}
	if got := strings.Join(cfg.Report.Formats, ","); got != "csv,html" {
		t.Fatalf("unexpected report formats: %q", got)
	}
	if cfg.Manifest.LongPathLimit != 260 {
		t.Fatalf("unexpected long path limit: %d", cfg.Manifest.LongPathLimit)
	}
	if cfg.FITS.KeepXML {
		t.Fatal("expected keep_xml disabled by default")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "formatrisk.toml")

	type payload struct {
		FITS struct {
			Binary  string `toml:"binary"`
			KeepXML bool   `toml:"keep_xml"`
		} `toml:"fits"`
		Reference struct {
			NARA string `toml:"nara_risk_csv"`
			Risk string `toml:"other_risk_csv"`
			ITA  string `toml:"technical_appraisal_csv"`
		} `toml:"reference"`
		Appraisal struct {
			TrashKeywords []string `toml:"trash_keywords"`
		} `toml:"appraisal"`
		Report struct {
			Formats []string `toml:"formats"`
		} `toml:"report"`
	}
	custom := payload{}
	custom.FITS.Binary = filepath.Join(tempDir, "fits", "fits.sh")
	custom.FITS.KeepXML = true
	custom.Reference.NARA = filepath.Join(tempDir, "nara.csv")
	custom.Reference.Risk = filepath.Join(tempDir, "risk.csv")
	custom.Reference.ITA = filepath.Join(tempDir, "ita.csv")
	custom.Appraisal.TrashKeywords = []string{" Trash ", "RECYCLER", "trash"}
	custom.Report.Formats = []string{"MD", "csv"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.FITSBinary() != custom.FITS.Binary {
		t.Fatalf("unexpected fits binary %q", cfg.FITSBinary())
	}
	if !cfg.FITS.KeepXML {
		t.Fatal("expected keep_xml from file")
	}
	if got := strings.Join(cfg.Appraisal.TrashKeywords, ","); got != "trash,recycler" {
		t.Fatalf("expected normalized trash keywords, got %q", got)
	}
	if got := strings.Join(cfg.Report.Formats, ","); got != "markdown,csv" {
		t.Fatalf("expected normalized formats, got %q", got)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "formatrisk.toml")
	content := "[fits]\nbinary = \"/opt/fits/fits.sh\"\n\n[reference]\nnara_risk_csv = \"/data/nara.csv\"\nother_risk_csv = \"/data/risk.csv\"\ntechnical_appraisal_csv = \"/data/ita.csv\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FITS_BINARY", "/usr/local/fits/fits.sh")
	t.Setenv("FORMATRISK_NARA_CSV", "/env/nara.csv")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FITSBinary() != "/usr/local/fits/fits.sh" {
		t.Errorf("expected FITS binary from env, got %q", cfg.FITSBinary())
	}
	if cfg.Reference.NARARiskCSV != "/env/nara.csv" {
		t.Errorf("expected NARA path from env, got %q", cfg.Reference.NARARiskCSV)
	}
	if cfg.Reference.OtherRiskCSV != "/data/risk.csv" {
		t.Errorf("expected risk path from file, got %q", cfg.Reference.OtherRiskCSV)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "nara_risk_csv") {
		t.Fatalf("sample config missing reference keys: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.FITS.Binary != "fits.sh" {
		t.Fatalf("unexpected sample fits binary %q", cfg.FITS.Binary)
	}
	if len(cfg.Appraisal.TrashKeywords) != 2 {
		t.Fatalf("unexpected sample trash keywords %v", cfg.Appraisal.TrashKeywords)
	}
}

func TestValidateListsEveryProblem(t *testing.T) {
	cfg := config.Default()
	cfg.FITS.Binary = ""
	cfg.Report.Formats = []string{"xlsx"}
	cfg.Manifest.LongPathLimit = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	// fits + three reference tables + report + manifest + logging format
	if len(verr.Problems) != 7 {
		t.Fatalf("expected 7 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
	for _, fragment := range []string{"fits.binary", "reference.nara_risk_csv", "reference.other_risk_csv", "reference.technical_appraisal_csv", "report.formats", "manifest.long_path_limit", "logging.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestCheckInputsReportsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "nara.csv")
	if err := os.WriteFile(present, []byte("Format Name\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := config.Default()
	cfg.Reference.NARARiskCSV = present
	cfg.Reference.OtherRiskCSV = filepath.Join(dir, "missing-risk.csv")
	cfg.Reference.TechnicalAppraisalCSV = dir

	err := cfg.CheckInputs()
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", verr.Problems)
	}
	if !strings.Contains(verr.Problems[0], "does not exist") || !strings.Contains(verr.Problems[1], "is a directory") {
		t.Fatalf("unexpected problems: %v", verr.Problems)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	setReferenceEnv(t, t.TempDir())
	configPath := filepath.Join(t.TempDir(), "formatrisk.toml")
	content := "[fits]\nbinary = \"fits.sh\"\nthreads = 4\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "threads") {
		t.Fatalf("expected offending key in error, got %q", err.Error())
	}
}
