package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSized writes a file of exactly size bytes so size-derived columns
// (KB, MB, percentages) can be asserted. A size <= 0 writes one byte.
func WriteSized(t testing.TB, path string, size int) {
	t.Helper()
	WriteText(t, path, strings.Repeat("B", max(size, 1)))
}
