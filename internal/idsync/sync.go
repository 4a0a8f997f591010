package idsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"formatrisk/internal/fits"
	"formatrisk/internal/idstore"
	"formatrisk/internal/logging"
	"formatrisk/internal/services"
)

// Identifier runs format identification. *fits.Client satisfies it.
type Identifier interface {
	IdentifyTree(ctx context.Context, root, outDir string) error
	IdentifyFile(ctx context.Context, path, outPath string) error
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress reports identification progress through factory.
func WithProgress(factory ProgressFactory) Option {
	return func(s *Synchronizer) {
		if factory != nil {
			s.progress = factory
		}
	}
}

// WithKeepXML leaves FITS artifacts in the staging directory.
func WithKeepXML(keep bool) Option {
	return func(s *Synchronizer) {
		s.keepXML = keep
	}
}

// Synchronizer reconciles an accession's identification store with the
// files currently on disk.
type Synchronizer struct {
	identifier Identifier
	staging    string
	keepXML    bool
	logger     *slog.Logger
	progress   ProgressFactory
}

// New constructs a Synchronizer that writes FITS artifacts to staging.
func New(identifier Identifier, staging string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		identifier: identifier,
		staging:    staging,
		logger:     logging.NewNop(),
		progress:   func(int, string) Progress { return noProgress{} },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync brings the store at storePath in line with the files under root and
// saves it. Without a prior store the whole tree is identified at once;
// otherwise records for vanished files are dropped and only new files are
// identified. Files already in the store keep their records untouched.
func (s *Synchronizer) Sync(ctx context.Context, root, storePath string) (*idstore.Store, SyncPlan, error) {
	logger := logging.NewComponentLogger(s.logger, "idsync")
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, SyncPlan{}, fmt.Errorf("resolve accession root: %w", err)
	}

	prior, repairs, err := idstore.Load(storePath)
	if err != nil {
		return nil, SyncPlan{}, err
	}
	for _, repair := range repairs {
		logging.WarnWithContext(logger, "dropped undecodable characters from store row", "encoding_repair",
			logging.String(logging.FieldPath, repair.Key),
			logging.Int("line", repair.Line),
			logging.String(logging.FieldErrorHint, "rename the file to remove unsupported characters"),
			logging.String(logging.FieldImpact, "path in the report may differ from the file on disk"),
		)
	}

	files, err := ListFiles(root, []string{s.staging})
	if err != nil {
		return nil, SyncPlan{}, fmt.Errorf("list accession files: %w", err)
	}
	plan := Plan(files, prior)
	plan.Repairs = repairs
	logger.Info("sync plan",
		logging.Bool("bulk", plan.Bulk),
		logging.Int("new", len(plan.New)),
		logging.Int("stale", len(plan.Stale)),
		logging.Int("kept", len(plan.Kept)),
	)

	if err := s.prepareStaging(); err != nil {
		return nil, plan, err
	}
	defer s.cleanupStaging(logger)

	store := prior
	if plan.Bulk {
		store, err = s.identifyBulk(ctx, root, &plan, logger)
	} else {
		store.RemovePaths(toSet(plan.Stale))
		err = s.identifyNew(ctx, store, &plan, logger)
	}
	if err != nil {
		return nil, plan, err
	}

	s.reportUnidentified(store, files, logger)
	if err := store.Save(storePath); err != nil {
		return nil, plan, err
	}
	return store, plan, nil
}

func (s *Synchronizer) identifyBulk(ctx context.Context, root string, plan *SyncPlan, logger *slog.Logger) (*idstore.Store, error) {
	store := idstore.New()
	if len(plan.New) == 0 {
		return store, nil
	}
	bar := s.progress(-1, "Identifying formats")
	err := s.identifier.IdentifyTree(ctx, root, s.staging)
	_ = bar.Finish()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.staging)
	if err != nil {
		return nil, fmt.Errorf("read fits output: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fits.ArtifactSuffix) {
			continue
		}
		records, ok := s.parse(filepath.Join(s.staging, entry.Name()), plan, logger)
		if ok {
			store.Add(records...)
		}
	}
	return store, nil
}

func (s *Synchronizer) identifyNew(ctx context.Context, store *idstore.Store, plan *SyncPlan, logger *slog.Logger) error {
	if len(plan.New) == 0 {
		return nil
	}
	bar := s.progress(len(plan.New), "Identifying new files")
	defer func() { _ = bar.Finish() }()

	seen := map[string]int{}
	for _, path := range plan.New {
		if err := ctx.Err(); err != nil {
			return err
		}
		artifact := filepath.Join(s.staging, fits.ArtifactName(path, seen))
		if err := s.identifier.IdentifyFile(ctx, path, artifact); err != nil {
			if ctx.Err() != nil || !errors.Is(err, services.ErrExternalTool) {
				return err
			}
			plan.Skipped = append(plan.Skipped, path)
			logging.WarnWithContext(logger, "FITS failed on file", "fits_file_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file opens; it is retried on the next run"),
				logging.String(logging.FieldImpact, "file is left out of this analysis"),
			)
			_ = bar.Add(1)
			continue
		}
		if records, ok := s.parse(artifact, plan, logger); ok {
			store.Add(records...)
		}
		_ = bar.Add(1)
	}
	return nil
}

func (s *Synchronizer) parse(artifact string, plan *SyncPlan, logger *slog.Logger) ([]idstore.Record, bool) {
	records, err := fits.ParseFile(artifact)
	if err != nil {
		plan.Skipped = append(plan.Skipped, filepath.Base(artifact))
		logging.WarnWithContext(logger, "could not read FITS output", "fits_parse_failed",
			logging.String("artifact", filepath.Base(artifact)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file is left out of this analysis"),
		)
		return nil, false
	}
	return records, true
}

func (s *Synchronizer) reportUnidentified(store *idstore.Store, files []string, logger *slog.Logger) {
	identified := store.Paths()
	for _, path := range files {
		if _, ok := identified[path]; !ok {
			logging.WarnWithContext(logger, "file has no identification", "unidentified_file",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldErrorHint, "it will be identified again on the next run"),
			)
		}
	}
}

func (s *Synchronizer) prepareStaging() error {
	if err := os.RemoveAll(s.staging); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("prepare fits output: %w", err)
	}
	if err := os.MkdirAll(s.staging, 0o755); err != nil {
		return fmt.Errorf("create fits output: %w", err)
	}
	return nil
}

func (s *Synchronizer) cleanupStaging(logger *slog.Logger) {
	if s.keepXML {
		return
	}
	if err := os.RemoveAll(s.staging); err != nil {
		logger.Warn("failed to remove fits output", logging.String("dir", s.staging), logging.Error(err))
	}
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
