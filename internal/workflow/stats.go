package workflow

import (
	"time"

	"formatrisk/internal/history"
	"formatrisk/internal/report"
)

// RunStats summarizes one analysis run.
type RunStats struct {
	ID        string
	Accession string
	Root      string
	OutputDir string
	StorePath string

	StartedAt  time.Time
	FinishedAt time.Time

	Bulk       bool
	NewPaths   int
	StalePaths int
	KeptPaths  int

	Records    int
	JoinedRows int
	ResultRows int

	// EncodingWarnings counts store rows whose undecodable bytes were dropped.
	EncodingWarnings int
	ReferenceRepairs int
	SkippedArtifacts []string
	EncodeLog        string

	Totals  report.Totals
	Outputs []string
}

// Duration is the wall time of the run.
func (s RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s RunStats) historyRun() *history.Run {
	return &history.Run{
		ID:               s.ID,
		Accession:        s.Accession,
		Root:             s.Root,
		StartedAt:        s.StartedAt,
		FinishedAt:       s.FinishedAt,
		Bulk:             s.Bulk,
		NewPaths:         s.NewPaths,
		StalePaths:       s.StalePaths,
		KeptPaths:        s.KeptPaths,
		Records:          s.Records,
		JoinedRows:       s.JoinedRows,
		ResultRows:       s.ResultRows,
		EncodingWarnings: s.EncodingWarnings,
		SkippedArtifacts: len(s.SkippedArtifacts),
		Files:            s.Totals.Files,
		TotalMB:          s.Totals.MB,
	}
}
