package releases

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Timeline flattens every point release of every line, followed by the
// development line, and sorts the result newest first.
func (r Releases) Timeline() []TimelineRow {
	var rows []TimelineRow
	for _, line := range r.Lines {
		rows = append(rows, lineRows(line.CodeName, line.Releases, false)...)
	}
	rows = append(rows, lineRows(Development, r.Development.Releases, true)...)

	SortByDate(rows)
	return rows
}

// FilteredTimeline is Timeline restricted to the lines named in selected.
// The development line is included when selected contains Development.
// Names that match no line contribute no rows.
func (r Releases) FilteredTimeline(selected []string) []TimelineRow {
	var rows []TimelineRow
	for _, line := range r.Lines {
		if !slices.Contains(selected, line.CodeName) {
			continue
		}
		rows = append(rows, lineRows(line.CodeName, line.Releases, false)...)
	}
	if slices.Contains(selected, Development) {
		rows = append(rows, lineRows(Development, r.Development.Releases, true)...)
	}

	SortByDate(rows)
	return rows
}

// SortByDate orders rows by release date, newest first. Dates are compared
// as strings, so they must be zero-padded YYYY-MM-DD to sort correctly.
// Rows with equal dates keep their relative order.
func SortByDate(rows []TimelineRow) {
	slices.SortStableFunc(rows, func(a, b TimelineRow) int {
		return strings.Compare(b.Released, a.Released)
	})
}

func lineRows(codeName string, points []PointRelease, dev bool) []TimelineRow {
	return lo.Map(points, func(p PointRelease, _ int) TimelineRow {
		return TimelineRow{
			Released:    p.Released,
			CodeName:    codeName,
			Version:     p.Version,
			EOL:         Placeholder,
			Development: dev,
		}
	})
}
