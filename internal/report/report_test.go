package report_test

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"formatrisk/internal/appraisal"
	"formatrisk/internal/idstore"
	"formatrisk/internal/reference"
	"formatrisk/internal/report"
	"formatrisk/internal/risk"
)

func result(path, format string, kb float64, level reference.RiskLevel) appraisal.Result {
	return appraisal.Result{
		Row: risk.Row{
			Record:    idstore.Record{Path: path, FormatName: format, SizeKB: kb},
			RiskLevel: level,
		},
		TechnicalAppraisal: appraisal.NotForTA,
		OtherRisk:          appraisal.NotForOther,
	}
}

// riskScenario is ten records totalling 66 KB, four of them low risk.
func riskScenario() []appraisal.Result {
	return []appraisal.Result{
		result("/acc/d1/a", "A", 10, reference.LowRisk),
		result("/acc/d1/b", "A", 10, reference.LowRisk),
		result("/acc/d1/c", "A", 6.4, reference.LowRisk),
		result("/acc/d1/d", "A", 0, reference.LowRisk),
		result("/acc/d2/e", "B", 10, reference.HighRisk),
		result("/acc/d2/f", "B", 10, reference.HighRisk),
		result("/acc/d2/g", "C", 5, reference.ModerateRisk),
		result("/acc/d2/h", "C", 5, reference.ModerateRisk),
		result("/acc/d2/i", "D", 4.6, reference.NoMatch),
		result("/acc/j", "D", 5, reference.NoMatch),
	}
}

func TestSubtotalByRiskLevel(t *testing.T) {
	results := riskScenario()
	totals := report.ComputeTotals(results)
	if totals.Files != 10 || math.Abs(totals.MB-0.066) > 1e-9 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	rows := report.Subtotals(results, []report.Column{report.ColRiskLevel}, totals)
	if rows[0].Key[0] != string(reference.LowRisk) {
		t.Fatalf("expected first-seen group first, got %v", rows[0].Key)
	}
	low := rows[0]
	if low.Files != 4 || low.FilePercent != 40 || math.Abs(low.SizeMB-0.0264) > 1e-9 || low.SizePercent != 40 {
		t.Fatalf("unexpected low risk subtotal %+v", low)
	}

	var files int
	var pct float64
	for _, row := range rows {
		files += row.Files
		pct += row.FilePercent
	}
	if files != 10 || math.Abs(pct-100) > 0.01 {
		t.Fatalf("groups do not partition the total: files=%d pct=%v", files, pct)
	}

	table := report.Subtotal(report.SheetRiskSubtotals, results, []report.Column{report.ColRiskLevel}, totals)
	want := []string{"Low Risk", "4", "40", "0.0264", "40"}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Fatalf("rendered row = %v, want %v", table.Rows[0], want)
	}
	wantHeader := []string{"NARA_Risk Level", "File Count", "File %", "Size (MB)", "Size %"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Fatalf("header = %v", table.Header)
	}
}

func TestSubtotalEmptyUsesSentinel(t *testing.T) {
	table := report.Subtotal("x", nil, []report.Column{report.ColFormatName}, report.Totals{})
	if !table.Empty() {
		t.Fatal("expected empty table")
	}
	records := table.Records()
	if len(records) != 1 || records[0][0] != report.NoData || len(records[0]) != len(table.Header) {
		t.Fatalf("unexpected sentinel %v", records)
	}
}

func TestMediaSubtotal(t *testing.T) {
	results := riskScenario()
	results[4].TechnicalAppraisal = appraisal.TechnicalAppraisalFormat
	results[5].TechnicalAppraisal = appraisal.TechnicalAppraisalTrash
	results[6].OtherRisk = "Archive format"

	rows := report.MediaSubtotals(results, "/acc")
	if len(rows) != 2 {
		t.Fatalf("expected 2 media rows, got %+v", rows)
	}
	d1, d2 := rows[0], rows[1]
	if d1.Media != "d1" || d1.Files != 4 || d1.LowRisk != 4 || math.Abs(d1.SizeMB-0.0264) > 1e-9 {
		t.Fatalf("unexpected d1 %+v", d1)
	}
	if d2.Media != "d2" || d2.Files != 5 || d2.HighRisk != 2 || d2.ModerateRisk != 2 || d2.NoMatch != 1 {
		t.Fatalf("unexpected d2 %+v", d2)
	}
	if d2.TechnicalAppraisal != 1 || d2.OtherRisk != 1 {
		t.Fatalf("expected only Format rows counted for appraisal, got %+v", d2)
	}
}

func TestMediaOf(t *testing.T) {
	cases := []struct {
		path  string
		media string
		ok    bool
	}{
		{"/acc/disk1/a/b.txt", "disk1", true},
		{"/acc/disk1/b.txt", "disk1", true},
		{"/acc/b.txt", "", false},
		{"/other/disk1/b.txt", "", false},
		{"/acc2/disk1/b.txt", "", false},
	}
	for _, tc := range cases {
		media, ok := report.MediaOf(tc.path, "/acc/")
		if media != tc.media || ok != tc.ok {
			t.Fatalf("MediaOf(%q) = %q, %v", tc.path, media, ok)
		}
	}
}

func TestSubsets(t *testing.T) {
	valid := result("/acc/d/ok.pdf", "PDF", 1, reference.LowRisk)
	valid.Valid = idstore.FlagTrue
	invalid := result("/acc/d/bad.pdf", "PDF", 1, reference.LowRisk)
	invalid.Valid = idstore.FlagFalse
	message := result("/acc/d/msg.pdf", "PDF", 1, reference.LowRisk)
	message.StatusMessage = "Unexpected end of file"
	multi1 := result("/acc/d/img.jpg", "JFIF", 1, reference.LowRisk)
	multi2 := result("/acc/d/img.jpg", "Exif", 1, reference.ModerateRisk)
	ta := result("/acc/d/trash/x", "Unknown Binary", 1, reference.NoMatch)
	ta.TechnicalAppraisal = appraisal.TechnicalAppraisalTrash
	results := []appraisal.Result{valid, invalid, message, multi1, multi2, ta}

	if got := report.Validation(results).Column("FITS_File_Path"); !reflect.DeepEqual(got, []string{"/acc/d/bad.pdf", "/acc/d/msg.pdf"}) {
		t.Fatalf("validation subset = %v", got)
	}
	if got := report.MultipleFormats(results).Column("FITS_File_Path"); !reflect.DeepEqual(got, []string{"/acc/d/img.jpg", "/acc/d/img.jpg"}) {
		t.Fatalf("multiple formats subset = %v", got)
	}
	nara := report.NARARisk(results)
	if got := nara.Column("FITS_File_Path"); !reflect.DeepEqual(got, []string{"/acc/d/img.jpg", "/acc/d/trash/x"}) {
		t.Fatalf("nara risk subset = %v", got)
	}
	if nara.Column("FITS_Format_Name") != nil {
		t.Fatal("expected format name dropped from NARA risk subset")
	}
	if got := report.TechnicalAppraisal(results).Column("Technical_Appraisal"); !reflect.DeepEqual(got, []string{"Trash"}) {
		t.Fatalf("technical appraisal subset = %v", got)
	}
	if !report.OtherRisks(results).Empty() {
		t.Fatal("expected no other risks")
	}
}

func TestDuplicatesIgnoreMultipleIdentifications(t *testing.T) {
	a1 := result("/acc/d/a.jpg", "JFIF", 2, reference.LowRisk)
	a1.MD5 = "same"
	a2 := result("/acc/d/a.jpg", "Exif", 2, reference.LowRisk)
	a2.MD5 = "same"
	lone := result("/acc/d/lone.txt", "Text", 1, reference.LowRisk)
	lone.MD5 = "unique"
	if !report.Duplicates([]appraisal.Result{a1, a2, lone}).Empty() {
		t.Fatal("a file with two identifications is not a duplicate of itself")
	}

	copyOfA := result("/acc/e/a-copy.jpg", "JFIF", 2, reference.LowRisk)
	copyOfA.MD5 = "same"
	dups := report.Duplicates([]appraisal.Result{a1, a2, lone, copyOfA})
	want := [][]string{{"/acc/d/a.jpg", "2", "same"}, {"/acc/e/a-copy.jpg", "2", "same"}}
	if !reflect.DeepEqual(dups.Rows, want) {
		t.Fatalf("duplicates = %v, want %v", dups.Rows, want)
	}
}

func TestBuildSheetOrder(t *testing.T) {
	doc := report.Build(riskScenario(), "/acc", reportTime)
	var names []string
	for _, s := range doc.Sheets {
		names = append(names, s.Name)
	}
	want := []string{
		"Format Subtotals", "NARA Risk Subtotals", "Tech Appraisal Subtotals", "Other Risk Subtotals",
		"Media Subtotals", "NARA Risk", "For Technical Appraisal", "Other Risks", "Multiple Formats",
		"Duplicates", "Validation",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("sheets = %v", names)
	}
	ta, _ := doc.Sheet(report.SheetTASubtotals)
	if got := ta.Rows[0][0]; got != appraisal.NotForTA {
		t.Fatalf("expected Not for TA group over the full set, got %q", got)
	}
	if doc.Accession != "acc" {
		t.Fatalf("accession = %q", doc.Accession)
	}
}

var reportTime = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func TestWriteAllFormats(t *testing.T) {
	dir := t.TempDir()
	doc := report.Build(riskScenario(), "/acc", reportTime)
	paths, err := report.Write(doc, dir, "acc", []string{"csv", "markdown", "html"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != len(doc.Sheets)+2 {
		t.Fatalf("expected %d outputs, got %d", len(doc.Sheets)+2, len(paths))
	}

	first, err := os.ReadFile(filepath.Join(dir, "acc_format-analysis", "01-format-subtotals.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(first), "FITS_Format_Name,NARA_Risk Level,File Count") {
		t.Fatalf("unexpected csv header: %q", string(first))
	}
	dups, err := os.ReadFile(filepath.Join(dir, "acc_format-analysis", "10-duplicates.csv"))
	if err != nil {
		t.Fatalf("read duplicates csv: %v", err)
	}
	if !strings.Contains(string(dups), report.NoData) {
		t.Fatalf("expected sentinel in empty sheet, got %q", string(dups))
	}

	md, err := os.ReadFile(filepath.Join(dir, "acc_format-analysis.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "## Media Subtotals") || !strings.Contains(string(md), "| Low Risk |") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if !strings.Contains(string(md), "Generated 2026-03-04 05:06.") {
		t.Fatalf("expected the supplied timestamp in markdown:\n%s", md)
	}
	if report.RenderMarkdown(doc) != string(md) {
		t.Fatal("expected rendering the same document to be reproducible")
	}
	page, err := os.ReadFile(filepath.Join(dir, "acc_format-analysis.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(page), "<h2 id=\"tech-appraisal-subtotals\">") || !strings.Contains(string(page), "<table") {
		t.Fatalf("unexpected html:\n%s", page)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if _, err := report.Write(report.Build(nil, "/acc", reportTime), t.TempDir(), "acc", []string{"xlsx"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
