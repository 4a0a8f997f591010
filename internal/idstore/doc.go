// Package idstore persists identification records for an accession.
//
// The store is a CSV file with one row per (file, detected format). It is the
// only state carried between runs, so every field must survive a save/load
// round trip unchanged; the synchronizer relies on that to leave unchanged
// files alone.
//
// Key types:
//   - Record: one identification, comparable by value
//   - Store: the sorted record set with path-level removal
//
// Lock guards the store against two runs on the same accession.
package idstore
