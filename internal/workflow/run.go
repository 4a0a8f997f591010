package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"formatrisk/internal/appraisal"
	"formatrisk/internal/config"
	"formatrisk/internal/fits"
	"formatrisk/internal/history"
	"formatrisk/internal/idstore"
	"formatrisk/internal/idsync"
	"formatrisk/internal/logging"
	"formatrisk/internal/preflight"
	"formatrisk/internal/reference"
	"formatrisk/internal/report"
	"formatrisk/internal/risk"
	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

// Run analyses the accession directory and writes its reports. Stats are
// returned even on failure so callers can show how far the run got.
func Run(ctx context.Context, cfg *config.Config, accession string, opts Options) (RunStats, error) {
	stats := RunStats{ID: history.NewRunID(), StartedAt: opts.now()}
	if cfg == nil {
		return stats, services.Wrap(services.ErrConfiguration, "workflow", "run", "configuration not loaded", nil)
	}

	root, outDir, err := resolveDirs(accession, opts.OutputDir)
	if err != nil {
		return stats, err
	}
	name := filepath.Base(root)
	stats.Accession = name
	stats.Root = root
	stats.OutputDir = outDir
	stats.StorePath = StorePath(outDir, name)

	ctx = services.WithRunID(ctx, stats.ID)
	ctx = services.WithAccession(ctx, name)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.logger(), "workflow"))

	if err := checkReady(cfg, root, outDir, logger); err != nil {
		return stats, err
	}

	lock, err := idstore.Lock(stats.StorePath)
	if err != nil {
		return stats, services.Wrap(services.ErrValidation, "workflow", "lock", "another run is using "+filepath.Base(stats.StorePath), err)
	}
	defer func() { _ = lock.Unlock() }()

	refs, err := loadReferences(cfg, logger, &stats)
	if err != nil {
		return stats, err
	}

	store, err := identify(services.WithStage(ctx, "identify"), cfg, root, opts, logger, &stats)
	if err != nil {
		return stats, err
	}

	results := analyze(store, refs, cfg, &stats)
	if err := writeOutputs(results, root, cfg, opts.now(), logger, &stats); err != nil {
		return stats, err
	}

	stats.FinishedAt = opts.now()
	recordHistory(ctx, cfg, opts.History, stats, logger)
	logger.Info("analysis complete",
		logging.Int("files", stats.Totals.Files),
		logging.Float64("size_mb", stats.Totals.MB),
		logging.Int("rows", stats.ResultRows),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return stats, nil
}

func resolveDirs(accession, output string) (string, string, error) {
	if strings.TrimSpace(accession) == "" {
		return "", "", services.Wrap(services.ErrValidation, "workflow", "run", "accession directory is required", nil)
	}
	root, err := filepath.Abs(accession)
	if err != nil {
		return "", "", fmt.Errorf("resolve accession: %w", err)
	}
	outDir := filepath.Dir(root)
	if strings.TrimSpace(output) != "" {
		if outDir, err = config.ExpandPath(output); err != nil {
			return "", "", err
		}
	}
	if within(root, outDir) {
		return "", "", services.Wrap(services.ErrConfiguration, "workflow", "run",
			fmt.Sprintf("output directory %s is inside the accession; reports would be analysed on the next run", outDir), nil)
	}
	return root, outDir, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func checkReady(cfg *config.Config, root, outDir string, logger *slog.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return services.Wrap(services.ErrValidation, "workflow", "output", "create output directory", err)
	}
	results := preflight.RunAll(cfg, preflight.Target{Accession: root, OutputDir: outDir})
	for _, r := range results {
		if r.Passed || r.Optional {
			logger.Debug("preflight check",
				logging.String("check", r.Name),
				logging.Bool("passed", r.Passed),
				logging.String("detail", r.Detail),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and run again"),
		)
	}
	return preflight.Failures(results)
}

func loadReferences(cfg *config.Config, logger *slog.Logger, stats *RunStats) (*reference.Set, error) {
	refs, repairs, err := reference.LoadAll(cfg.Reference)
	for _, r := range repairs {
		logging.WarnWithContext(logger, "dropped undecodable characters from reference row", "reference_repaired",
			logging.String(logging.FieldPath, r.Dataset),
			logging.Int("line", r.Line),
			logging.String(logging.FieldImpact, "the affected reference row may not match as expected"),
		)
	}
	stats.ReferenceRepairs = len(repairs)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func identify(ctx context.Context, cfg *config.Config, root string, opts Options, logger *slog.Logger, stats *RunStats) (*idstore.Store, error) {
	client, err := fits.New(cfg.FITSBinary(), opts.fitsOptions()...)
	if err != nil {
		return nil, err
	}
	syncer := idsync.New(client, StagingDir(stats.OutputDir, stats.Accession),
		idsync.WithLogger(logging.WithContext(ctx, opts.logger())),
		idsync.WithProgress(opts.Progress),
		idsync.WithKeepXML(cfg.FITS.KeepXML),
	)
	store, plan, err := syncer.Sync(ctx, root, stats.StorePath)
	stats.Bulk = plan.Bulk
	stats.NewPaths = len(plan.New)
	stats.StalePaths = len(plan.Stale)
	stats.KeptPaths = len(plan.Kept)
	stats.EncodingWarnings = len(plan.Repairs)
	stats.SkippedArtifacts = plan.Skipped
	if err != nil {
		return nil, err
	}
	stats.Records = store.Len()

	stats.EncodeLog, err = writeEncodeLog(EncodeLogPath(stats.OutputDir, stats.Accession), plan.Repairs)
	if err != nil {
		logging.WarnWithContext(logger, "could not write encoding error log", "encode_log_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "repaired paths are only listed in the log"),
		)
	}
	return store, nil
}

func analyze(store *idstore.Store, refs *reference.Set, cfg *config.Config, stats *RunStats) []appraisal.Result {
	joined := risk.Match(store.Records(), refs.NARA)
	rows := risk.Collapse(joined)
	classifier := appraisal.New(refs.TechnicalAppraisal, cfg.Appraisal.TrashKeywords, refs.OtherRisk)
	results := classifier.Classify(rows)

	stats.JoinedRows = len(joined)
	stats.ResultRows = len(results)
	stats.Totals = report.ComputeTotals(results)
	return results
}

func writeOutputs(results []appraisal.Result, root string, cfg *config.Config, generated time.Time, logger *slog.Logger, stats *RunStats) error {
	full := FullResultPath(stats.OutputDir, stats.Accession)
	if err := report.WriteResults(full, results); err != nil {
		return fmt.Errorf("write full results: %w", err)
	}
	stats.Outputs = append(stats.Outputs, full)

	doc := report.Build(results, root, generated)
	written, err := report.Write(doc, stats.OutputDir, stats.Accession, cfg.Report.Formats)
	stats.Outputs = append(stats.Outputs, written...)
	if err != nil {
		return err
	}
	logger.Info("reports written",
		logging.Int("outputs", len(stats.Outputs)),
		logging.String(logging.FieldPath, stats.OutputDir),
	)
	return nil
}

// writeEncodeLog lists each repaired path once. A clean run removes the log
// left by an earlier run and returns "".
func writeEncodeLog(path string, repairs []tabular.Repair) (string, error) {
	if len(repairs) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return "", nil
	}
	seen := make(map[string]struct{}, len(repairs))
	var b strings.Builder
	for _, r := range repairs {
		if _, ok := seen[r.Key]; ok {
			continue
		}
		seen[r.Key] = struct{}{}
		b.WriteString(r.Key)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// recordHistory never fails the run; the reports are already on disk.
func recordHistory(ctx context.Context, cfg *config.Config, store *history.Store, stats RunStats, logger *slog.Logger) {
	if store == nil {
		opened, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "could not open run history", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in formatrisk history"),
			)
			return
		}
		defer opened.Close()
		store = opened
	}
	if err := store.Record(ctx, stats.historyRun()); err != nil {
		logging.WarnWithContext(logger, "could not record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in formatrisk history"),
		)
	}
}
