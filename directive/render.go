package directive

import (
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/releases"
	"github.com/ceph/releasedocs/table"
)

const defaultProduct = "Ceph"

// InvariantViolation means the development token is also used as a real
// code name, so the filtered timeline cannot tell the two lines apart.
type InvariantViolation struct {
	Path     string
	CodeName string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %q is reserved for the development line but is also a release code name", e.Path, e.CodeName)
}

// DependencyTracker records files a document depends on, so that the
// document is rebuilt when they change.
type DependencyTracker interface {
	NoteDependency(path string)
}

// Context describes a single directive invocation.
type Context struct {
	Location table.Location
	// Tracker may be nil.
	Tracker DependencyTracker
}

func (c Context) noteDependency(path string) {
	if c.Tracker != nil {
		c.Tracker.NoteDependency(path)
	}
}

// Renderer turns a releases file into tables.
type Renderer struct {
	loader  releases.Loader
	product string
}

type option func(*Renderer)

func WithFs(fs afero.Fs) option {
	return func(r *Renderer) {
		r.loader = releases.NewLoader(releases.WithFs(fs))
	}
}

// WithProduct sets the prefix of version labels in the full timeline.
func WithProduct(product string) option {
	return func(r *Renderer) {
		r.product = product
	}
}

func NewRenderer(opts ...option) Renderer {
	r := Renderer{
		loader:  releases.NewLoader(),
		product: defaultProduct,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r Renderer) load(c Context, path string) (releases.Releases, *table.Result) {
	c.noteDependency(path)
	rels, err := r.loader.Load(path)
	if err != nil {
		var loadErr *releases.DataLoadError
		if xerrors.As(err, &loadErr) {
			err = loadErr.Err
		}
		res := table.WarningResult(c.Location, "Failed to open releases file %s: %s", path, err)
		return releases.Releases{}, &res
	}
	return rels, nil
}

// RenderSummary lists every release line with its initial release date and
// target end of life, in file order.
func (r Renderer) RenderSummary(c Context, path string) table.Result {
	rels, warning := r.load(c, path)
	if warning != nil {
		return *warning
	}

	t := table.New("Version", "Release date", "End of life")
	for _, line := range rels.Lines {
		t.Append(line.CodeName, line.ReleasedOrPlaceholder(), line.TargetEOLOrPlaceholder())
	}
	return table.TableResult(t)
}

// RenderTimeline lists every point release of every line, development
// included, newest first.
func (r Renderer) RenderTimeline(c Context, path string) table.Result {
	rels, warning := r.load(c, path)
	if warning != nil {
		return *warning
	}

	t := table.New("Version", "Code name", "Release date", "End of life")
	for _, row := range rels.Timeline() {
		codeName := row.CodeName
		if row.Development {
			codeName = releases.Placeholder
		}
		t.Append(fmt.Sprintf("%s %s", r.product, row.Version), codeName, row.Released, row.EOL)
	}
	return table.TableResult(t)
}

// RenderFilteredTimeline renders one column per selected line. Each point
// release gets its own row with the version under its line's column and
// placeholders elsewhere; releases sharing a date are not merged.
func (r Renderer) RenderFilteredTimeline(c Context, path string, selected []string) (table.Result, error) {
	rels, warning := r.load(c, path)
	if warning != nil {
		return *warning, nil
	}
	if _, ok := rels.Line(releases.Development); ok {
		return table.Result{}, &InvariantViolation{Path: path, CodeName: releases.Development}
	}

	t := table.New(append([]string{"Date"}, selected...)...)
	for _, row := range rels.FilteredTimeline(selected) {
		cells := make([]string, 0, len(selected)+1)
		cells = append(cells, row.Released)
		for _, name := range selected {
			if name == row.CodeName {
				cells = append(cells, row.Version)
			} else {
				cells = append(cells, releases.Placeholder)
			}
		}
		t.Append(cells...)
	}
	return table.TableResult(t), nil
}
