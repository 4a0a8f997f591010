package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"formatrisk/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var accession string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var runs []history.Run
			if accession != "" {
				runs, err = store.ForAccession(cmd.Context(), accession, limit)
			} else {
				runs, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyColumns, historyRows(runs, time.Now()), nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accession, "accession", "a", "", "Only show runs for this accession name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

var historyColumns = []tableColumn{
	{Title: "Started"},
	{Title: "Accession"},
	{Title: "Mode"},
	{Title: "New", Numeric: true},
	{Title: "Removed", Numeric: true},
	{Title: "Unchanged", Numeric: true},
	{Title: "Rows", Numeric: true},
	{Title: "Size", Numeric: true},
	{Title: "Took", Numeric: true},
}

func historyRows(runs []history.Run, now time.Time) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "incremental"
		if run.Bulk {
			mode = "full"
		}
		rows = append(rows, []string{
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Accession,
			mode,
			strconv.Itoa(run.NewPaths),
			strconv.Itoa(run.StalePaths),
			strconv.Itoa(run.KeptPaths),
			humanize.Comma(int64(run.Files)),
			formatMB(run.TotalMB),
			run.Duration().Round(time.Second).String(),
		})
	}
	return rows
}
