package workflow

import (
	"log/slog"
	"time"

	"formatrisk/internal/fits"
	"formatrisk/internal/history"
	"formatrisk/internal/idsync"
	"formatrisk/internal/logging"
)

// Options tunes a single run. The zero value is usable.
type Options struct {
	// OutputDir receives the store, staging directory, and reports.
	// Defaults to the accession's parent directory.
	OutputDir string
	Logger    *slog.Logger
	Progress  idsync.ProgressFactory
	// Executor replaces the FITS process runner.
	Executor fits.Executor
	// History records the run. When nil the database from the config's
	// state directory is opened for the duration of the run.
	History *history.Store
	// Now is the clock used for run timestamps.
	Now func() time.Time
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) fitsOptions() []fits.Option {
	if o.Executor == nil {
		return nil
	}
	return []fits.Option{fits.WithExecutor(o.Executor)}
}
