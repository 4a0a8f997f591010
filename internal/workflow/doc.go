// Package workflow runs one format analysis of an accession end to end.
//
// Run checks that FITS and the reference tables are available, takes the
// accession's store lock, and brings the identification store up to date.
// It then matches every record against the NARA risk table, collapses the
// matches to one row per identification, classifies the rows, and writes the
// full result table plus the report document beside the accession.
//
// Each completed run is recorded in the history database so later runs can
// be compared. Files written into the output directory follow the
// "<accession>_<suffix>" naming the archivists' other tooling expects.
package workflow
