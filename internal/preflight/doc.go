// Package preflight checks that an analysis run can start: the FITS launcher
// resolves, the reference tables exist, the accession is readable, and the
// output directory is writable.
//
// The analyze workflow calls RunAll and refuses to start when any check
// fails, so a missing tool is reported before any identification work. The
// CLI "status" command renders the same results as a table.
package preflight
