package workflow

import "path/filepath"

// Output names derived from the accession directory name.
const (
	storeSuffix      = "_fits.csv"
	stagingSuffix    = "_FITS"
	encodeLogSuffix  = "_encode_errors.txt"
	fullResultSuffix = "_full_risk_data.csv"
)

// StorePath returns where the identification store for accession lives.
func StorePath(outputDir, accession string) string {
	return filepath.Join(outputDir, accession+storeSuffix)
}

// StagingDir returns the directory FITS writes its XML into.
func StagingDir(outputDir, accession string) string {
	return filepath.Join(outputDir, accession+stagingSuffix)
}

// EncodeLogPath returns the list of paths that needed character repair.
func EncodeLogPath(outputDir, accession string) string {
	return filepath.Join(outputDir, accession+encodeLogSuffix)
}

// FullResultPath returns the classified result table.
func FullResultPath(outputDir, accession string) string {
	return filepath.Join(outputDir, accession+fullResultSuffix)
}
