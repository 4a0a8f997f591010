// Package idsync keeps an accession's identification store in step with the
// files on disk.
//
// The first run identifies the whole tree in one FITS invocation. Later
// runs only identify files the store has not seen and drop records for files
// that are gone, so unchanged files are never re-identified. Both paths
// produce the same store for the same tree.
package idsync
