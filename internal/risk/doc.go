// Package risk joins identification records to NARA preservation risk and
// removes the duplicates that joining produces.
//
// Matching tries, in order: PRONOM identifier, format name with version,
// format name, then file extension. The first rule with any hit wins, so an
// identifier match is never diluted by a coarser guess.
package risk
