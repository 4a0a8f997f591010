// Package report derives the subsets and subtotals archivists review and
// renders them as a multi-sheet analysis document.
//
// Every sheet is recomputed from the full classified result set; nothing
// here is persisted between runs except the rendered output. A subset with
// no rows renders a single "No data of this type" row so an empty sheet is
// never mistaken for a failed one.
package report
