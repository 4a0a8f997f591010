package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"formatrisk/internal/manifest"
)

func newManifestCommand() *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:         "manifest",
		Short:       "File manifest and deletion log for technical appraisal",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	manifestCmd.AddCommand(newManifestInitCommand())
	manifestCmd.AddCommand(newManifestCompareCommand())
	return manifestCmd
}

func newManifestInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init <accession-dir>",
		Short: "Write initialmanifest_YYYYMMDD.csv listing every file before appraisal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []manifest.InitialOption
			if overwrite {
				opts = append(opts, manifest.WithOverwrite())
			}
			path, count, err := manifest.WriteInitial(args[0], time.Now(), opts...)
			if errors.Is(err, manifest.ErrExists) {
				return fmt.Errorf("%w (use --overwrite to replace it, or run \"manifest compare\" to log deletions)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listed %s files in %s\n", humanize.Comma(int64(count)), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace today's manifest if it exists")
	return cmd
}

func newManifestCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <accession-dir>",
		Short: "Write deletionlog_YYYYMMDD.csv listing files removed since the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, deleted, err := manifest.CompareDeleted(args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s deleted files in %s\n", humanize.Comma(int64(len(deleted))), path)
			return nil
		},
	}
}

func newLongPathsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "long-paths <accession-dir>",
		Short: "Write file-path-changes.csv listing paths too long to bag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				limit = cfg.Manifest.LongPathLimit
			}
			path, found, err := manifest.FindLongPaths(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d paths longer than %d characters; log written to %s\n", len(found), limit, path)
			if len(found) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, lp := range found {
				rows = append(rows, []string{fmt.Sprint(lp.Length), lp.Path})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{{Title: "Length", Numeric: true}, {Title: "Path"}}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", manifest.DefaultLongPathLimit, "Maximum path length in characters")
	return cmd
}
