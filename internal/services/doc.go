// Package services defines shared utilities consumed by the analysis stages
// and the external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, accession names, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper so the CLI can tell a
//     configuration problem from a missing identification tool or a tool that
//     ran and failed.
//
// Use these helpers when wiring new stage logic so failures are classified
// the same way across the pipeline.
package services
