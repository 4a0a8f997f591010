package fits

import (
	"fmt"
	"path/filepath"
)

// ArtifactSuffix is appended to a file's base name to name its XML artifact.
const ArtifactSuffix = ".fits.xml"

// ArtifactName returns the artifact file name for base, numbering repeats
// within one run: the second "a.txt" becomes "a.txt-1.fits.xml". seen is
// updated in place.
func ArtifactName(base string, seen map[string]int) string {
	base = filepath.Base(base)
	count := seen[base]
	seen[base] = count + 1
	if count == 0 {
		return base + ArtifactSuffix
	}
	return fmt.Sprintf("%s-%d%s", base, count, ArtifactSuffix)
}
