package table

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// Table is a header row followed by body rows. Every row has as many cells
// as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

func New(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a body row. It panics when the row width does not match the
// header, which is a programming error in the caller.
func (t *Table) Append(cells ...string) {
	if len(cells) != len(t.Header) {
		panic(fmt.Sprintf("table: row has %d cells, header has %d", len(cells), len(t.Header)))
	}
	t.Rows = append(t.Rows, cells)
}

// Column returns the cells of the i-th column, header excluded.
func (t *Table) Column(i int) []string {
	cells := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells = append(cells, row[i])
	}
	return cells
}

// Location is a position in a source document.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Warning is reported at the location of the directive that produced it.
type Warning struct {
	Location Location
	Message  string
}

func (w Warning) String() string {
	if w.Location.File == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Location, w.Message)
}

// Result is what a directive hands back: a table, or a warning when the
// table could not be built. Exactly one of the two is set.
type Result struct {
	Table   *Table
	Warning *Warning
}

func TableResult(t *Table) Result {
	return Result{Table: t}
}

func WarningResult(loc Location, format string, args ...interface{}) Result {
	return Result{Warning: &Warning{Location: loc, Message: fmt.Sprintf(format, args...)}}
}

// Writer renders results in one output format.
type Writer interface {
	WriteTable(sb *strings.Builder, t *Table) error
	WriteWarning(sb *strings.Builder, w Warning) error
}

// Render renders a result with the given writer.
func Render(w Writer, res Result) (string, error) {
	var sb strings.Builder
	switch {
	case res.Table != nil:
		if err := w.WriteTable(&sb, res.Table); err != nil {
			return "", xerrors.Errorf("failed to write table: %w", err)
		}
	case res.Warning != nil:
		if err := w.WriteWarning(&sb, *res.Warning); err != nil {
			return "", xerrors.Errorf("failed to write warning: %w", err)
		}
	default:
		return "", xerrors.New("empty result")
	}
	return sb.String(), nil
}

type Format string

const (
	FormatRSTGrid  Format = "rst"
	FormatRSTList  Format = "list"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatTerminal Format = "term"
)

var Formats = []Format{FormatRSTGrid, FormatRSTList, FormatMarkdown, FormatHTML, FormatTerminal}

func NewWriter(f Format) (Writer, error) {
	switch f {
	case FormatRSTGrid:
		return RSTGrid{}, nil
	case FormatRSTList:
		return RSTList{}, nil
	case FormatMarkdown:
		return Markdown{}, nil
	case FormatHTML:
		return HTML{}, nil
	case FormatTerminal:
		return Terminal{}, nil
	}
	return nil, xerrors.Errorf("unknown format %q (supported: %v)", f, Formats)
}
