package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// RSTGrid writes reStructuredText grid tables.
type RSTGrid struct{}

func (RSTGrid) WriteTable(sb *strings.Builder, t *Table) error {
	widths := columnWidths(t)

	border := gridBorder(widths, '-')
	sb.WriteString(border)
	writeGridRow(sb, widths, t.Header)

	// docutils rejects a header without a body, so an empty table is
	// written as a single plain row.
	if len(t.Rows) == 0 {
		sb.WriteString(border)
		return nil
	}
	sb.WriteString(gridBorder(widths, '='))
	for _, row := range t.Rows {
		writeGridRow(sb, widths, row)
		sb.WriteString(border)
	}
	return nil
}

func (RSTGrid) WriteWarning(sb *strings.Builder, w Warning) error {
	return writeRSTWarning(sb, w)
}

// RSTList writes reStructuredText list-table directives.
type RSTList struct{}

func (RSTList) WriteTable(sb *strings.Builder, t *Table) error {
	sb.WriteString(".. list-table::\n")
	if len(t.Rows) > 0 {
		sb.WriteString("   :header-rows: 1\n")
	}
	sb.WriteString("\n")

	writeListRow(sb, t.Header)
	for _, row := range t.Rows {
		writeListRow(sb, row)
	}
	return nil
}

func (RSTList) WriteWarning(sb *strings.Builder, w Warning) error {
	return writeRSTWarning(sb, w)
}

func writeRSTWarning(sb *strings.Builder, w Warning) error {
	sb.WriteString(".. warning::\n\n")
	sb.WriteString("   ")
	sb.WriteString(w.String())
	sb.WriteString("\n")
	return nil
}

// rstCell keeps a cell on one line; a line break would split the grid row
// or the list item.
var rstCell = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func columnWidths(t *Table) []int {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = runewidth.StringWidth(rstCell.Replace(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(rstCell.Replace(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func gridBorder(widths []int, fill byte) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeGridRow(sb *strings.Builder, widths []int, cells []string) {
	sb.WriteByte('|')
	for i, cell := range cells {
		sb.WriteByte(' ')
		sb.WriteString(runewidth.FillRight(rstCell.Replace(cell), widths[i]))
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}

func writeListRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i == 0 {
			sb.WriteString("   * -")
		} else {
			sb.WriteString("     -")
		}
		if cell != "" {
			sb.WriteString(" ")
			sb.WriteString(rstCell.Replace(cell))
		}
		sb.WriteString("\n")
	}
}
