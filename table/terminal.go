package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// Terminal writes bordered tables for display in a terminal.
type Terminal struct{}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Bold(true)
)

func (Terminal) WriteTable(sb *strings.Builder, t *Table) error {
	tbl := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Header...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	sb.WriteString(tbl.Render())
	sb.WriteString("\n")
	return nil
}

func (Terminal) WriteWarning(sb *strings.Builder, w Warning) error {
	sb.WriteString(warningStyle.Render("WARNING:"))
	sb.WriteString(" ")
	sb.WriteString(w.String())
	sb.WriteString("\n")
	return nil
}
