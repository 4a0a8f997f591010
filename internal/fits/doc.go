// Package fits wraps the FITS (File Information Tool Set) command line and
// parses the XML artifacts it writes.
//
// Client runs FITS either recursively over an accession or on single files.
// A launcher that cannot be started, or that reports its Java main class
// missing, is ErrToolUnavailable so callers can tell "FITS never ran" from
// "FITS ran and found nothing". Parse turns one artifact into identification
// records, collapsing repeated identities the way the store expects.
package fits
