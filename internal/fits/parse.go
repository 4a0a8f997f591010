package fits

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"formatrisk/internal/idstore"
	"formatrisk/internal/services"
)

// Namespace is the FITS output XML namespace.
const Namespace = "http://hul.harvard.edu/ois/xml/ns/fits/fits_output"

// PronomPrefix turns a bare PUID into the PRONOM URL used by the NARA table.
const PronomPrefix = "https://www.nationalarchives.gov.uk/pronom/"

// emptyFormat is the identity FITS reports for zero-byte files.
const emptyFormat = "empty"

type document struct {
	XMLName    xml.Name   `xml:"http://hul.harvard.edu/ois/xml/ns/fits/fits_output fits"`
	Identities []identity `xml:"identification>identity"`
	FileInfo   fileInfo   `xml:"fileinfo"`
	FileStatus fileStatus `xml:"filestatus"`
}

type identity struct {
	Format   string       `xml:"format,attr"`
	Versions []string     `xml:"version"`
	Tools    []tool       `xml:"tool"`
	External []externalID `xml:"externalIdentifier"`
}

type tool struct {
	Name    string `xml:"toolname,attr"`
	Version string `xml:"toolversion,attr"`
}

type externalID struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type fileInfo struct {
	FilePath            []string `xml:"filepath"`
	LastModified        []string `xml:"fslastmodified"`
	Size                []string `xml:"size"`
	MD5                 []string `xml:"md5checksum"`
	CreatingApplication []string `xml:"creatingApplicationName"`
}

type fileStatus struct {
	Valid      []string `xml:"valid"`
	WellFormed []string `xml:"well-formed"`
	Message    []string `xml:"message"`
}

// ParseFile reads one FITS XML artifact.
func ParseFile(path string) ([]idstore.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Parse converts a FITS XML document into one record per distinct
// (format name, version) identity.
func Parse(r io.Reader) ([]idstore.Record, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "fits", "parse", "malformed FITS XML", err)
	}
	path := joined(doc.FileInfo.FilePath)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "fits", "parse", "fileinfo has no filepath", nil)
	}

	formats := collapseIdentities(doc.Identities)
	if len(formats) == 0 {
		return nil, nil
	}

	date, err := lastModified(joined(doc.FileInfo.LastModified))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fits", "parse", "fslastmodified", err)
	}
	size, err := sizeKB(joined(doc.FileInfo.Size))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fits", "parse", "size", err)
	}

	base := idstore.Record{
		Path:                path,
		MultipleIDs:         len(formats) > 1,
		DateModified:        date,
		SizeKB:              size,
		MD5:                 joined(doc.FileInfo.MD5),
		CreatingApplication: joined(doc.FileInfo.CreatingApplication),
		Valid:               flag(doc.FileStatus.Valid),
		WellFormed:          flag(doc.FileStatus.WellFormed),
		StatusMessage:       joined(doc.FileStatus.Message),
	}
	records := make([]idstore.Record, 0, len(formats))
	for _, f := range formats {
		rec := base
		rec.FormatName = f.name
		rec.FormatVersion = f.version
		rec.PUID = f.puid
		rec.Tools = f.tools
		records = append(records, rec)
	}
	return records, nil
}

type format struct {
	name    string
	version string
	puid    string
	tools   string
}

// collapseIdentities keeps one entry per format name in first-seen order.
// A later identity with the same name replaces an earlier one only when it
// adds a PUID, and an "empty" identity discards everything else.
func collapseIdentities(identities []identity) []format {
	var out []format
	index := map[string]int{}
	for _, id := range identities {
		f := format{
			name:    strings.TrimSpace(id.Format),
			version: joined(id.Versions),
			puid:    puid(id.External),
			tools:   toolNames(id.Tools),
		}
		key := f.name
		if i, ok := index[key]; ok {
			if out[i].puid == "" && f.puid != "" {
				out[i] = f
			}
			continue
		}
		if key == emptyFormat {
			out = []format{f}
			index = map[string]int{key: 0}
			continue
		}
		if _, ok := index[emptyFormat]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, f)
	}
	return out
}

func puid(ids []externalID) string {
	var values []string
	for _, id := range ids {
		if id.Type == "puid" {
			if v := strings.TrimSpace(id.Value); v != "" {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return ""
	}
	return PronomPrefix + strings.Join(values, "; ")
}

func toolNames(tools []tool) string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, fmt.Sprintf("%s version %s", t.Name, t.Version))
	}
	return strings.Join(names, "; ")
}

// joined mirrors how repeated FITS elements are flattened into one cell.
func joined(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "; ")
}

// flag reduces possibly conflicting tool verdicts: any false wins.
func flag(values []string) idstore.Flag {
	result := idstore.FlagUnknown
	for _, v := range values {
		switch idstore.ParseFlag(v) {
		case idstore.FlagFalse:
			return idstore.FlagFalse
		case idstore.FlagTrue:
			result = idstore.FlagTrue
		}
	}
	return result
}

func lastModified(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	// Epoch milliseconds; the first ten digits are seconds.
	if len(raw) > 10 {
		raw = raw[:10]
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", err
	}
	return time.Unix(seconds, 0).UTC().Format("2006-01-02"), nil
}

func sizeKB(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	bytes, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	kb := bytes / 1000
	if kb > 0.001 {
		kb = math.Round(kb*1000) / 1000
	}
	return kb, nil
}
