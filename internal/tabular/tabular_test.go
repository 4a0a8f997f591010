package tabular_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

func TestParseAddressesColumnsByHeader(t *testing.T) {
	input := "\ufeffFITS_FORMAT,NOTES\nempty,delete\n,\nUnknown Binary,\"review, then delete\"\n"
	table, repairs, err := tabular.Parse(strings.NewReader(input), "ita.csv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(repairs) != 0 {
		t.Fatalf("unexpected repairs %v", repairs)
	}
	if err := table.Require("FITS_FORMAT", "NOTES"); err != nil {
		t.Fatalf("Require: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected blank row to be skipped, got %d rows", len(table.Rows))
	}
	if got := table.Value(table.Rows[1], "NOTES"); got != "review, then delete" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := table.Value(table.Rows[0], "MISSING"); got != "" {
		t.Fatalf("expected empty value for missing column, got %q", got)
	}
}

func TestRequireListsEveryMissingColumn(t *testing.T) {
	table, _, err := tabular.Parse(strings.NewReader("Format Name\nZIP\n"), "nara.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = table.Require("Format Name", "Risk Level", "PRONOM URL")
	if err == nil {
		t.Fatal("expected missing column error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	for _, fragment := range []string{"nara.csv", `"Risk Level"`, `"PRONOM URL"`} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestParseRepairsUndecodableBytes(t *testing.T) {
	input := "File_Path,Format_Name\n/acc/ok.txt,Plain text\n/acc/caf\xe9.txt,Plain text\n"
	table, repairs, err := tabular.Parse(strings.NewReader(input), "store.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(repairs) != 1 {
		t.Fatalf("expected one repair, got %v", repairs)
	}
	if repairs[0].Line != 3 || repairs[0].Key != "/acc/caf.txt" {
		t.Fatalf("unexpected repair %+v", repairs[0])
	}
	if got := table.Value(table.Rows[1], "File_Path"); got != "/acc/caf.txt" {
		t.Fatalf("unexpected repaired path %q", got)
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, _, err := tabular.Parse(strings.NewReader(""), "empty.csv"); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	rows := [][]string{{"a", "1"}, {"b, c", "2"}}
	if err := tabular.Write(path, []string{"Name", "Count"}, rows); err != nil {
		t.Fatalf("Write: %v", err)
	}
	table, _, err := tabular.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Rows) != 2 || table.Value(table.Rows[1], "Name") != "b, c" {
		t.Fatalf("unexpected rows %v", table.Rows)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, found %d entries", len(entries))
	}
}
