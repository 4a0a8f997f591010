package idstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"formatrisk/internal/idstore"
	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

func sampleRecords() []idstore.Record {
	return []idstore.Record{
		{
			Path:          "/acc/b/photo.jpg",
			FormatName:    "JPEG File Interchange Format",
			FormatVersion: "1.01",
			PUID:          "fmt/43",
			Tools:         "Droid version 6.4, Jhove version 1.20.1",
			MultipleIDs:   true,
			DateModified:  "2020-01-02",
			SizeKB:        12.345,
			MD5:           "abc",
			Valid:         idstore.FlagTrue,
			WellFormed:    idstore.FlagTrue,
		},
		{
			Path:          "/acc/b/photo.jpg",
			FormatName:    "Exchangeable Image File Format (Compressed)",
			FormatVersion: "2.2",
			PUID:          "fmt/645",
			Tools:         "Exiftool version 11.54",
			MultipleIDs:   true,
			SizeKB:        12.345,
			MD5:           "abc",
		},
		{
			Path:                "/acc/a/report, final.docx",
			FormatName:          "Office Open XML Document",
			CreatingApplication: "Microsoft Office Word",
			SizeKB:              0.1,
			Valid:               idstore.FlagFalse,
			StatusMessage:       "Not able to determine type of end of line",
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acc_fits.csv")
	store := idstore.New(sampleRecords()...)
	if err := store.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, repairs, err := idstore.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(repairs) != 0 {
		t.Fatalf("unexpected repairs: %v", repairs)
	}
	if !loaded.Exists() {
		t.Fatal("expected loaded store to exist")
	}
	if !reflect.DeepEqual(loaded.Records(), store.Records()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded.Records(), store.Records())
	}
}

func TestRecordsSortedByPathKeepingToolOrder(t *testing.T) {
	records := idstore.New(sampleRecords()...).Records()
	if records[0].Path != "/acc/a/report, final.docx" {
		t.Fatalf("expected sorted paths, got %q first", records[0].Path)
	}
	if records[1].PUID != "fmt/43" || records[2].PUID != "fmt/645" {
		t.Fatalf("records for one path lost tool order: %+v", records[1:])
	}
}

func TestAddSkipsRepeatedFormat(t *testing.T) {
	store := idstore.New(sampleRecords()...)
	store.Add(sampleRecords()[0])
	if store.Len() != 3 {
		t.Fatalf("expected duplicate identity to be skipped, got %d records", store.Len())
	}
	other := sampleRecords()[0]
	other.FormatVersion = "1.02"
	store.Add(other)
	if store.Len() != 3 {
		t.Fatalf("expected a second version of the same format to be skipped, got %d records", store.Len())
	}
	other.FormatName = "Tagged Image File Format"
	store.Add(other)
	if store.Len() != 4 {
		t.Fatalf("expected a new format for the path to be added, got %d records", store.Len())
	}
}

func TestLoadCollapsesRepeatedFormatForPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.csv")
	first := sampleRecords()[0]
	second := first
	second.FormatVersion = "1.02"
	rows := [][]string{first.Row(), second.Row()}
	if err := tabular.Write(path, idstore.Header, rows); err != nil {
		t.Fatalf("write store: %v", err)
	}
	store, _, err := idstore.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	records := store.Records()
	if len(records) != 1 || records[0].FormatVersion != "1.01" {
		t.Fatalf("expected the first row for the format to win, got %+v", records)
	}
}

func TestRemovePaths(t *testing.T) {
	store := idstore.New(sampleRecords()...)
	removed := store.RemovePaths(map[string]struct{}{"/acc/b/photo.jpg": {}})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, ok := store.Paths()["/acc/b/photo.jpg"]; ok {
		t.Fatal("expected path to be gone")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record left, got %d", store.Len())
	}
}

func TestLoadMissingStore(t *testing.T) {
	store, _, err := idstore.Load(filepath.Join(t.TempDir(), "none.csv"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Exists() || store.Len() != 0 {
		t.Fatal("expected empty, non-existent store")
	}
}

func TestLoadRepairsInvalidBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acc_fits.csv")
	store := idstore.New(idstore.Record{Path: "/acc/caf\xe9.txt", FormatName: "Plain text"})
	if err := store.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, repairs, err := idstore.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(repairs) != 1 || repairs[0].Key != "/acc/caf.txt" {
		t.Fatalf("unexpected repairs: %+v", repairs)
	}
	if loaded.Records()[0].Path != "/acc/caf.txt" {
		t.Fatalf("expected repaired path, got %q", loaded.Records()[0].Path)
	}
}

func TestLoadRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acc_fits.csv")
	content := "File_Path,Format_Name,Format_Version,PUID,Identifying_Tool(s),Multiple_IDs,Date_Last_Modified,Size_KB,MD5,Creating_Application,Valid,Well-Formed,Status_Message\n" +
		"/acc/x.txt,Plain text,,,,False,,lots,,,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := idstore.Load(path); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acc_fits.csv")
	lock, err := idstore.Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer lock.Unlock()

	if _, err := idstore.Lock(path); !errors.Is(err, idstore.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
