package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"formatrisk/internal/idsync"
	"formatrisk/internal/workflow"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "analyze <accession-dir>",
		Short: "Identify formats in an accession and write the risk analysis",
		Long: "Runs FITS over the accession (only new files after the first run), matches every\n" +
			"identification against the NARA risk table, classifies the results, and writes\n" +
			"the report next to the accession or into --output.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			opts := workflow.Options{
				OutputDir: outputDir,
				Logger:    logger,
			}
			if !noProgress && isTerminal(cmd.ErrOrStderr()) {
				opts.Progress = idsync.BarProgress(cmd.ErrOrStderr())
			}

			stats, err := workflow.Run(cmd.Context(), cfg, args[0], opts)
			if err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the store and reports (default: the accession's parent)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the identification progress bar")
	return cmd
}

func printRunSummary(w io.Writer, stats workflow.RunStats) {
	p := newStatusPrinter(w)
	p.section("Analysis of " + stats.Accession)

	mode := "incremental"
	if stats.Bulk {
		mode = "full"
	}
	p.line("Identification", statusOK, fmt.Sprintf("%s (%d new, %d removed, %d unchanged)",
		mode, stats.NewPaths, stats.StalePaths, stats.KeptPaths))
	p.line("Files", statusInfo, fmt.Sprintf("%s rows, %s", humanize.Comma(int64(stats.Totals.Files)), formatMB(stats.Totals.MB)))
	p.line("Duration", statusInfo, stats.Duration().Round(100 * time.Millisecond).String())

	if stats.EncodingWarnings > 0 {
		p.line("Encoding", statusWarn, fmt.Sprintf("%d store rows repaired; see %s", stats.EncodingWarnings, filepath.Base(stats.EncodeLog)))
	}
	if stats.ReferenceRepairs > 0 {
		p.line("Reference tables", statusWarn, fmt.Sprintf("%d rows repaired", stats.ReferenceRepairs))
	}
	if n := len(stats.SkippedArtifacts); n > 0 {
		p.line("Skipped", statusWarn, strconv.Itoa(n)+" files had no usable FITS output; they will be retried next run")
	}

	rows := make([][]string, 0, len(stats.Outputs))
	for _, path := range stats.Outputs {
		rows = append(rows, []string{path})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable([]tableColumn{{Title: "Outputs"}}, rows, nil))
}

// formatMB renders a megabyte total with SI units.
func formatMB(mb float64) string {
	if mb <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(mb * 1_000_000))
}
