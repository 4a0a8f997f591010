// Package history records completed analysis runs in a SQLite database so
// archivists can see when an accession was last analyzed and how it changed
// between runs.
package history
