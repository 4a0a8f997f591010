// Package reference loads the static datasets risk analysis is measured
// against: the NARA preservation risk table, the format risk criteria table,
// and the technical appraisal format list.
//
// Loaders report every structural problem they find rather than stopping at
// the first, so an archivist can fix a spreadsheet in one pass.
package reference
