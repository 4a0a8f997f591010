package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"formatrisk/internal/preflight"
	"formatrisk/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "status [accession-dir]",
		Short: "Check that FITS, the reference tables, and the directories are ready",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var target preflight.Target
			if len(args) == 1 {
				root, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				target.Accession = root
				target.OutputDir = filepath.Dir(root)
				if outputDir != "" {
					target.OutputDir = outputDir
				}
			}

			results := preflight.RunAll(cfg, target)
			p := newStatusPrinter(cmd.OutOrStdout())
			p.section("Readiness")
			for _, r := range results {
				kind := statusOK
				switch {
				case r.Passed:
				case r.Optional:
					kind = statusWarn
				default:
					kind = statusError
				}
				p.line(r.Name, kind, r.Detail)
			}

			if target.Accession != "" {
				name := filepath.Base(target.Accession)
				p.line("Store", statusInfo, workflow.StorePath(target.OutputDir, name))
				p.line("Keep FITS XML", statusInfo, yesNo(cfg.FITS.KeepXML))
			}
			if err := preflight.Failures(results); err != nil {
				return fmt.Errorf("not ready: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory to check instead of the accession's parent")
	return cmd
}
