package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a CLI table. Numeric columns are
// right-aligned.
type tableColumn struct {
	Title   string
	Numeric bool
}

// renderTable draws rows with the rounded style. A non-empty footer is
// rendered as a totals line.
func renderTable(columns []tableColumn, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(columns, func(i int) string { return columns[i].Title }))
	for _, row := range rows {
		tw.AppendRow(toRow(columns, cell(row)))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(columns, cell(footer)))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		align := text.AlignLeft
		if col.Numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(columns []tableColumn, value func(int) string) table.Row {
	row := make(table.Row, len(columns))
	for i := range columns {
		row[i] = value(i)
	}
	return row
}

// cell pads short rows with blanks.
func cell(values []string) func(int) string {
	return func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
}
