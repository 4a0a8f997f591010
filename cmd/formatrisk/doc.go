// Package main hosts the formatrisk CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the slog logger, and hands the real work to the internal packages:
// "analyze" runs the workflow against an accession, "manifest" and
// "long-paths" produce the appraisal housekeeping logs, "history" lists past
// runs, and "status" shows whether a run could start.
//
// Keep this package lean. New behaviour belongs in an internal package first
// and is surfaced here as a command or flag.
package main
