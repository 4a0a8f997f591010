package textutil

import (
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DropInvalidUTF8 removes bytes that do not decode as UTF-8. The boolean
// reports whether anything was removed.
func DropInvalidUTF8(s string) (string, bool) {
	if utf8.ValidString(s) {
		return s, false
	}
	dropper := runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))
	cleaned, _, err := transform.String(dropper, s)
	if err != nil {
		// Fall back to a manual scan; transform only fails on short buffers.
		cleaned = dropManually(s)
	}
	return cleaned, true
}

func dropManually(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || size > 1 {
			out = append(out, s[i:i+size]...)
		}
		i += size
	}
	return string(out)
}

// DropInvalidFields repairs every field of a CSV record in place and reports
// whether any field changed.
func DropInvalidFields(fields []string) bool {
	changed := false
	for i, field := range fields {
		if cleaned, dropped := DropInvalidUTF8(field); dropped {
			fields[i] = cleaned
			changed = true
		}
	}
	return changed
}
