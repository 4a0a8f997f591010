package idstore

import (
	"fmt"
	"strconv"
	"strings"

	"formatrisk/internal/services"
	"formatrisk/internal/tabular"
)

// Flag is a FITS tri-state validity value. Tools that do not check a format
// leave it unknown, which is not the same as false.
type Flag string

const (
	FlagUnknown Flag = ""
	FlagTrue    Flag = "True"
	FlagFalse   Flag = "False"
)

// ParseFlag accepts true/false in any case; anything else is unknown.
func ParseFlag(value string) Flag {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return FlagTrue
	case "false":
		return FlagFalse
	default:
		return FlagUnknown
	}
}

// Record is one (file, detected format) identification. All fields are
// comparable so records can be used directly as map keys.
type Record struct {
	Path                string
	FormatName          string
	FormatVersion       string
	PUID                string
	Tools               string
	MultipleIDs         bool
	DateModified        string
	SizeKB              float64
	MD5                 string
	CreatingApplication string
	Valid               Flag
	WellFormed          Flag
	StatusMessage       string
}

// Header is the store's column order.
var Header = []string{
	"File_Path",
	"Format_Name",
	"Format_Version",
	"PUID",
	"Identifying_Tool(s)",
	"Multiple_IDs",
	"Date_Last_Modified",
	"Size_KB",
	"MD5",
	"Creating_Application",
	"Valid",
	"Well-Formed",
	"Status_Message",
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.Path,
		r.FormatName,
		r.FormatVersion,
		r.PUID,
		r.Tools,
		formatBool(r.MultipleIDs),
		r.DateModified,
		FormatSize(r.SizeKB),
		r.MD5,
		r.CreatingApplication,
		string(r.Valid),
		string(r.WellFormed),
		r.StatusMessage,
	}
}

// FormatSize renders a kilobyte size with the shortest exact representation.
func FormatSize(kb float64) string {
	return strconv.FormatFloat(kb, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func recordFromRow(table *tabular.Table, row []string, line int) (Record, error) {
	value := func(column string) string { return table.Value(row, column) }
	rec := Record{
		Path:                value("File_Path"),
		FormatName:          value("Format_Name"),
		FormatVersion:       value("Format_Version"),
		PUID:                value("PUID"),
		Tools:               value("Identifying_Tool(s)"),
		MultipleIDs:         ParseFlag(value("Multiple_IDs")) == FlagTrue,
		DateModified:        value("Date_Last_Modified"),
		MD5:                 value("MD5"),
		CreatingApplication: value("Creating_Application"),
		Valid:               ParseFlag(value("Valid")),
		WellFormed:          ParseFlag(value("Well-Formed")),
		StatusMessage:       value("Status_Message"),
	}
	if rec.Path == "" {
		return Record{}, services.Wrap(services.ErrValidation, "idstore", "load", fmt.Sprintf("%s line %d: empty File_Path", table.Name, line), nil)
	}
	if raw := strings.TrimSpace(value("Size_KB")); raw != "" {
		size, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, services.Wrap(services.ErrValidation, "idstore", "load", fmt.Sprintf("%s line %d: Size_KB %q", table.Name, line, raw), err)
		}
		rec.SizeKB = size
	}
	return rec, nil
}
