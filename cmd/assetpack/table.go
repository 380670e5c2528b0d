package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// columnAlignment picks the cell alignment for one table column. Numeric
// columns (versions, file counts) read better right-aligned.
type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable lays rows out under headers in a rounded-border table, the
// format used by catalog listings and config show. Rows shorter than the
// header row are padded with empty cells; aligns applies per column and
// defaults to left when shorter than the header.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}

	writer := table.NewWriter()
	writer.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(headers))
	for i, title := range headers {
		headerRow[i] = title
	}
	writer.AppendHeader(headerRow)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		writer.AppendRow(cells)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		alignment := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			alignment = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: alignment, AlignHeader: text.AlignLeft}
	}
	writer.SetColumnConfigs(configs)

	return writer.Render()
}
