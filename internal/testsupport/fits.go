package testsupport

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"formatrisk/internal/fits"
)

// FITSTool is one <tool> entry under an identity.
type FITSTool struct {
	Name    string
	Version string
}

// FITSIdentity describes one <identity> in a generated artifact.
type FITSIdentity struct {
	Format  string
	Version string
	PUID    string
	Tools   []FITSTool
}

// FITSFile describes a complete generated FITS artifact.
type FITSFile struct {
	Path                string
	Identities          []FITSIdentity
	LastModifiedMillis  int64
	SizeBytes           int64
	MD5                 string
	CreatingApplication string
	Valid               string
	WellFormed          string
	Message             string
}

// FITSXML renders f the way FITS lays out its output.
func FITSXML(f FITSFile) string {
	var b strings.Builder
	esc := html.EscapeString
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<fits xmlns=%q version=\"1.5.0\">\n", fits.Namespace)
	b.WriteString("  <identification>\n")
	for _, id := range f.Identities {
		fmt.Fprintf(&b, "    <identity format=\"%s\" mimetype=\"application/octet-stream\">\n", esc(id.Format))
		for _, t := range id.Tools {
			fmt.Fprintf(&b, "      <tool toolname=\"%s\" toolversion=\"%s\" />\n", esc(t.Name), esc(t.Version))
		}
		if id.Version != "" {
			fmt.Fprintf(&b, "      <version toolname=\"Droid\" toolversion=\"6.4\">%s</version>\n", esc(id.Version))
		}
		if id.PUID != "" {
			fmt.Fprintf(&b, "      <externalIdentifier toolname=\"Droid\" toolversion=\"6.4\" type=\"puid\">%s</externalIdentifier>\n", esc(id.PUID))
		}
		b.WriteString("    </identity>\n")
	}
	b.WriteString("  </identification>\n")
	b.WriteString("  <fileinfo>\n")
	fmt.Fprintf(&b, "    <filepath toolname=\"OIS File Information\">%s</filepath>\n", esc(f.Path))
	fmt.Fprintf(&b, "    <filename toolname=\"OIS File Information\">%s</filename>\n", esc(filepath.Base(f.Path)))
	fmt.Fprintf(&b, "    <size toolname=\"OIS File Information\">%d</size>\n", f.SizeBytes)
	if f.MD5 != "" {
		fmt.Fprintf(&b, "    <md5checksum toolname=\"OIS File Information\">%s</md5checksum>\n", esc(f.MD5))
	}
	if f.LastModifiedMillis != 0 {
		fmt.Fprintf(&b, "    <fslastmodified toolname=\"OIS File Information\">%d</fslastmodified>\n", f.LastModifiedMillis)
	}
	if f.CreatingApplication != "" {
		fmt.Fprintf(&b, "    <creatingApplicationName toolname=\"Exiftool\">%s</creatingApplicationName>\n", esc(f.CreatingApplication))
	}
	b.WriteString("  </fileinfo>\n")
	b.WriteString("  <filestatus>\n")
	if f.WellFormed != "" {
		fmt.Fprintf(&b, "    <well-formed toolname=\"Jhove\">%s</well-formed>\n", esc(f.WellFormed))
	}
	if f.Valid != "" {
		fmt.Fprintf(&b, "    <valid toolname=\"Jhove\">%s</valid>\n", esc(f.Valid))
	}
	if f.Message != "" {
		fmt.Fprintf(&b, "    <message toolname=\"Jhove\">%s</message>\n", esc(f.Message))
	}
	b.WriteString("  </filestatus>\n")
	b.WriteString("</fits>\n")
	return b.String()
}

// FakeFITS is a fits.Executor that writes artifacts instead of running Java.
// Bulk ("-r") and single-file invocations are both understood.
type FakeFITS struct {
	// Identify describes a file on disk; DefaultIdentify is used when nil.
	Identify func(path string) FITSFile
	// Lines are emitted as tool output on every call.
	Lines []string
	// Err is returned after artifacts are written.
	Err error
	// FailFile, when set, is consulted for single-file calls; a non-nil
	// result is returned without writing an artifact.
	FailFile func(path string) error

	mu    sync.Mutex
	calls [][]string
}

// Run implements fits.Executor.
func (f *FakeFITS) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	for _, line := range f.Lines {
		if onOutput != nil {
			onOutput(line)
		}
	}
	if f.Err != nil {
		return f.Err
	}

	input, output, recursive := parseFITSArgs(args)
	if !recursive {
		if f.FailFile != nil {
			if err := f.FailFile(input); err != nil {
				return err
			}
		}
		return f.write(input, output)
	}
	seen := map[string]int{}
	return filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return f.write(path, filepath.Join(output, fits.ArtifactName(d.Name(), seen)))
	})
}

// Calls returns the argument lists of every invocation so far.
func (f *FakeFITS) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

func (f *FakeFITS) write(input, output string) error {
	identify := f.Identify
	if identify == nil {
		identify = DefaultIdentify
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte(FITSXML(identify(input))), 0o644)
}

func parseFITSArgs(args []string) (input, output string, recursive bool) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-r":
			recursive = true
		case "-i":
			if i+1 < len(args) {
				input = args[i+1]
				i++
			}
		case "-o":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}
	return input, output, recursive
}

// DefaultIdentify stats and hashes path and picks a format from its
// extension.
func DefaultIdentify(path string) FITSFile {
	file := FITSFile{Path: path, LastModifiedMillis: 1577966400000}
	if data, err := os.ReadFile(path); err == nil {
		sum := md5.Sum(data)
		file.MD5 = hex.EncodeToString(sum[:])
		file.SizeBytes = int64(len(data))
	}
	droid := []FITSTool{{Name: "Droid", Version: "6.4"}}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		file.Identities = []FITSIdentity{{Format: "Plain text", Tools: []FITSTool{{Name: "Jhove", Version: "1.20.1"}}}}
		file.Valid, file.WellFormed = "true", "true"
	case ".pdf":
		file.Identities = []FITSIdentity{{Format: "Portable Document Format", Version: "1.4", PUID: "fmt/18", Tools: droid}}
	case ".jpg":
		file.Identities = []FITSIdentity{
			{Format: "JPEG File Interchange Format", Version: "1.01", PUID: "fmt/43", Tools: droid},
			{Format: "Exchangeable Image File Format (Compressed)", Version: "2.2", Tools: []FITSTool{{Name: "Exiftool", Version: "11.54"}}},
		}
	case ".zip":
		file.Identities = []FITSIdentity{{Format: "ZIP Format", Version: "2.0", PUID: "x-fmt/263", Tools: droid}}
	default:
		file.Identities = []FITSIdentity{{Format: "Unknown Binary", Tools: []FITSTool{{Name: "Jhove", Version: "1.20.1"}}}}
	}
	return file
}
