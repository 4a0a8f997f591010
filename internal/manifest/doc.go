// Package manifest provides the accession housekeeping logs archivists keep
// around technical appraisal: an initial file manifest, a deletion log
// comparing the accession against that manifest, and a list of paths too
// long to bag.
//
// All three logs are CSV files written into the accession directory. Scans
// skip the logs themselves so a manifest never lists its own siblings.
package manifest
