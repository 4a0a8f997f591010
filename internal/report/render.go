package report

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"formatrisk/internal/appraisal"
	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

// Output formats understood by Write.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Write renders doc in each requested format under dir and returns the paths
// written. CSV output is one file per sheet in a "<name>_format-analysis"
// directory; the other formats are single documents.
func Write(doc *Document, dir, name string, formats []string) ([]string, error) {
	base := filepath.Join(dir, name+"_format-analysis")
	var written []string
	for _, format := range formats {
		switch format {
		case FormatCSV:
			paths, err := writeCSV(doc, base)
			written = append(written, paths...)
			if err != nil {
				return written, err
			}
		case FormatMarkdown:
			path := base + ".md"
			if err := os.WriteFile(path, []byte(RenderMarkdown(doc)), 0o644); err != nil {
				return written, fmt.Errorf("write markdown report: %w", err)
			}
			written = append(written, path)
		case FormatHTML:
			path := base + ".html"
			if err := os.WriteFile(path, []byte(RenderHTML(doc)), 0o644); err != nil {
				return written, fmt.Errorf("write html report: %w", err)
			}
			written = append(written, path)
		default:
			return written, services.Wrap(services.ErrConfiguration, "report", "write", fmt.Sprintf("unsupported format %q", format), nil)
		}
	}
	return written, nil
}

func writeCSV(doc *Document, dir string) ([]string, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear csv report directory: %w", err)
	}
	paths := make([]string, 0, len(doc.Sheets))
	for i, sheet := range doc.Sheets {
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.csv", i+1, slug(sheet.Name)))
		if err := tabular.Write(path, sheet.Header, sheet.Records()); err != nil {
			return paths, fmt.Errorf("write sheet %q: %w", sheet.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteResults saves the full classified result table.
func WriteResults(path string, results []appraisal.Result) error {
	return tabular.Write(path, header(AllColumns), project(results, AllColumns))
}

// RenderMarkdown renders doc as one markdown document.
func RenderMarkdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s format analysis\n\n", doc.Accession)
	fmt.Fprintf(&b, "Generated %s. %d files, %s MB.\n", doc.Generated.Format("2006-01-02 15:04"), doc.Totals.Files, formatNumber(doc.Totals.MB))
	for _, sheet := range doc.Sheets {
		fmt.Fprintf(&b, "\n## %s\n\n", sheet.Name)
		b.WriteString(newWriter(sheet).RenderMarkdown())
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML renders doc as a standalone HTML page.
func RenderHTML(doc *Document) string {
	title := html.EscapeString(doc.Accession + " format analysis")
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	b.WriteString("<style>table{border-collapse:collapse}td,th{border:1px solid #999;padding:2px 6px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&b, "<p>Generated %s. %d files, %s MB.</p>\n", doc.Generated.Format("2006-01-02 15:04"), doc.Totals.Files, formatNumber(doc.Totals.MB))
	for _, sheet := range doc.Sheets {
		fmt.Fprintf(&b, "<h2 id=\"%s\">%s</h2>\n", slug(sheet.Name), html.EscapeString(sheet.Name))
		tw := newWriter(sheet)
		tw.Style().HTML.CSSClass = "format-analysis"
		tw.Style().HTML.EscapeText = true
		b.WriteString(tw.RenderHTML())
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func newWriter(sheet Table) table.Writer {
	tw := table.NewWriter()
	head := make(table.Row, len(sheet.Header))
	for i, h := range sheet.Header {
		head[i] = h
	}
	tw.AppendHeader(head)
	for _, record := range sheet.Records() {
		row := make(table.Row, len(sheet.Header))
		for i := range row {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}
		tw.AppendRow(row)
	}
	return tw
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
