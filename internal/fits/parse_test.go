package fits_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formatrisk/internal/fits"
	"formatrisk/internal/idstore"
	"formatrisk/internal/services"
	"formatrisk/internal/testsupport"
)

func TestParseSingleIdentity(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.FITSFile{
		Path: "/acc/disk1/report.pdf",
		Identities: []testsupport.FITSIdentity{{
			Format:  "Portable Document Format",
			Version: "1.4",
			PUID:    "fmt/18",
			Tools:   []testsupport.FITSTool{{Name: "Droid", Version: "6.4"}, {Name: "Jhove", Version: "1.20.1"}},
		}},
		LastModifiedMillis:  1577966400000,
		SizeBytes:           26350,
		MD5:                 "d41d8cd98f00b204e9800998ecf8427e",
		CreatingApplication: "Acrobat PDFMaker",
		Valid:               "true",
		WellFormed:          "true",
	})

	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := idstore.Record{
		Path:                "/acc/disk1/report.pdf",
		FormatName:          "Portable Document Format",
		FormatVersion:       "1.4",
		PUID:                fits.PronomPrefix + "fmt/18",
		Tools:               "Droid version 6.4; Jhove version 1.20.1",
		MultipleIDs:         false,
		DateModified:        "2020-01-02",
		SizeKB:              26.35,
		MD5:                 "d41d8cd98f00b204e9800998ecf8427e",
		CreatingApplication: "Acrobat PDFMaker",
		Valid:               idstore.FlagTrue,
		WellFormed:          idstore.FlagTrue,
	}
	if records[0] != want {
		t.Fatalf("record mismatch:\n got %+v\nwant %+v", records[0], want)
	}
}

func TestParseMultipleIdentitiesSetFlag(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.DefaultIdentify("/nonexistent/photo.jpg"))
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if !rec.MultipleIDs {
			t.Fatalf("expected MultipleIDs on %+v", rec)
		}
	}
	if records[0].FormatName != "JPEG File Interchange Format" {
		t.Fatalf("expected tool order preserved, got %q first", records[0].FormatName)
	}
}

func TestParsePrefersIdentityWithPUID(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.FITSFile{
		Path: "/acc/a.xml",
		Identities: []testsupport.FITSIdentity{
			{Format: "Extensible Markup Language", Version: "1.0", Tools: []testsupport.FITSTool{{Name: "Jhove", Version: "1.20.1"}}},
			{Format: "Extensible Markup Language", Version: "1.0", PUID: "fmt/101", Tools: []testsupport.FITSTool{{Name: "Droid", Version: "6.4"}}},
		},
	})
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected duplicates collapsed, got %d", len(records))
	}
	if records[0].PUID != fits.PronomPrefix+"fmt/101" || records[0].MultipleIDs {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestParseKeepsOneRecordPerFormatName(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.FITSFile{
		Path: "/acc/report.pdf",
		Identities: []testsupport.FITSIdentity{
			{Format: "Portable Document Format", Version: "1.4", Tools: []testsupport.FITSTool{{Name: "Jhove", Version: "1.20.1"}}},
			{Format: "Portable Document Format", Version: "1.7", PUID: "fmt/276", Tools: []testsupport.FITSTool{{Name: "Droid", Version: "6.4"}}},
			{Format: "Portable Document Format", Version: "1.5", Tools: []testsupport.FITSTool{{Name: "Exiftool", Version: "11.54"}}},
		},
	})
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record for the format, got %+v", records)
	}
	if records[0].FormatVersion != "1.7" || records[0].PUID != fits.PronomPrefix+"fmt/276" || records[0].MultipleIDs {
		t.Fatalf("expected the identity with a PUID to win, got %+v", records[0])
	}
}

func TestParseEmptyIdentityWins(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.FITSFile{
		Path: "/acc/zero.bin",
		Identities: []testsupport.FITSIdentity{
			{Format: "Unknown Binary"},
			{Format: "empty"},
			{Format: "Plain text"},
		},
	})
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 || records[0].FormatName != "empty" {
		t.Fatalf("expected only the empty identity, got %+v", records)
	}
}

func TestParseSmallSizesAreNotRounded(t *testing.T) {
	doc := testsupport.FITSXML(testsupport.FITSFile{
		Path:       "/acc/tiny.txt",
		Identities: []testsupport.FITSIdentity{{Format: "Plain text"}},
		SizeBytes:  1,
	})
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if records[0].SizeKB != 0.001 {
		t.Fatalf("expected 0.001 KB, got %v", records[0].SizeKB)
	}
}

func TestParseConflictingValidity(t *testing.T) {
	doc := `<fits xmlns="` + fits.Namespace + `">
  <identification><identity format="TIFF"><tool toolname="Jhove" toolversion="1"/></identity></identification>
  <fileinfo><filepath>/acc/x.tif</filepath></fileinfo>
  <filestatus><valid>true</valid><valid>false</valid><message>bad IFD</message><message>offset</message></filestatus>
</fits>`
	records, err := fits.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if records[0].Valid != idstore.FlagFalse {
		t.Fatalf("expected false to win, got %q", records[0].Valid)
	}
	if records[0].WellFormed != idstore.FlagUnknown {
		t.Fatalf("expected unknown well-formed, got %q", records[0].WellFormed)
	}
	if records[0].StatusMessage != "bad IFD; offset" {
		t.Fatalf("unexpected message %q", records[0].StatusMessage)
	}
}

func TestParseRejectsOtherDocuments(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this is not xml",
		"wrong root":     `<report><fileinfo><filepath>/x</filepath></fileinfo></report>`,
		"missing path":   `<fits xmlns="` + fits.Namespace + `"><identification/></fits>`,
		"bad timestamp":  `<fits xmlns="` + fits.Namespace + `"><identification><identity format="A"/></identification><fileinfo><filepath>/x</filepath><fslastmodified>soon</fslastmodified></fileinfo></fits>`,
	}
	for name, doc := range cases {
		if _, err := fits.Parse(strings.NewReader(doc)); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestParseFileNamesArtifactInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.txt.fits.xml")
	if err := os.WriteFile(path, []byte("<fits"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := fits.ParseFile(path)
	if err == nil || !strings.Contains(err.Error(), "broken.txt.fits.xml") {
		t.Fatalf("expected artifact name in error, got %v", err)
	}
}

func TestArtifactNameNumbersCollisions(t *testing.T) {
	seen := map[string]int{}
	got := []string{
		fits.ArtifactName("/a/notes.txt", seen),
		fits.ArtifactName("/b/notes.txt", seen),
		fits.ArtifactName("/c/notes.txt", seen),
		fits.ArtifactName("/c/other.txt", seen),
	}
	want := []string{"notes.txt.fits.xml", "notes.txt-1.fits.xml", "notes.txt-2.fits.xml", "other.txt.fits.xml"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("name %d: got %q want %q", i, got[i], want[i])
		}
	}
}
