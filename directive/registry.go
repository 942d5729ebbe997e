package directive

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/table"
)

// Default directive names.
const (
	SummaryName          = "ceph_releases"
	TimelineName         = "ceph_timeline"
	FilteredTimelineName = "ceph_timeline_filtered"
)

// Env is the build-wide state a directive runs in.
type Env struct {
	// SrcDir is the documentation source root. Arguments starting with "/"
	// are resolved against it.
	SrcDir  string
	Tracker DependencyTracker
}

// Invocation is a directive call found in a document.
type Invocation struct {
	Name string
	Args []string
	// Location.File is relative to Env.SrcDir.
	Location table.Location
}

// ResolvePath maps a directive argument to a path on disk. Absolute
// arguments are relative to the source root, everything else is relative
// to the invoking document.
func (e Env) ResolvePath(inv Invocation, arg string) string {
	if strings.HasPrefix(arg, "/") {
		return filepath.Join(e.SrcDir, filepath.FromSlash(strings.TrimPrefix(arg, "/")))
	}
	docDir := filepath.Dir(filepath.FromSlash(inv.Location.File))
	return filepath.Join(e.SrcDir, docDir, filepath.FromSlash(arg))
}

// Directive is a named table generator callable from documents. A returned
// error is fatal to the document; recoverable problems are warnings.
type Directive interface {
	Run(env Env, inv Invocation) (table.Result, error)
}

type Func func(env Env, inv Invocation) (table.Result, error)

func (f Func) Run(env Env, inv Invocation) (table.Result, error) {
	return f(env, inv)
}

type Registry struct {
	directives map[string]Directive
}

func NewRegistry() *Registry {
	return &Registry{directives: map[string]Directive{}}
}

func (r *Registry) Register(name string, d Directive) error {
	if name == "" {
		return xerrors.New("empty directive name")
	}
	if _, ok := r.directives[name]; ok {
		return xerrors.Errorf("directive %s is already registered", name)
	}
	r.directives[name] = d
	return nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.directives[name]
	return ok
}

// Names returns the registered directive names, sorted.
func (r *Registry) Names() []string {
	names := lo.Keys(r.directives)
	slices.Sort(names)
	return names
}

func (r *Registry) Run(env Env, inv Invocation) (table.Result, error) {
	d, ok := r.directives[inv.Name]
	if !ok {
		return table.WarningResult(inv.Location, "Unknown directive %q", inv.Name), nil
	}
	return d.Run(env, inv)
}

// Names overrides the names the built-in directives are registered under.
type Names struct {
	Summary          string
	Timeline         string
	FilteredTimeline string
}

func DefaultNames() Names {
	return Names{
		Summary:          SummaryName,
		Timeline:         TimelineName,
		FilteredTimeline: FilteredTimelineName,
	}
}

// Register installs the three release directives backed by rd.
func Register(reg *Registry, rd Renderer, names Names) error {
	names = withDefaults(names)

	summary := Func(func(env Env, inv Invocation) (table.Result, error) {
		if len(inv.Args) != 1 {
			return table.WarningResult(inv.Location, "%s expects exactly one argument (the releases file), got %d", inv.Name, len(inv.Args)), nil
		}
		return rd.RenderSummary(invocationContext(env, inv), env.ResolvePath(inv, inv.Args[0])), nil
	})

	timeline := Func(func(env Env, inv Invocation) (table.Result, error) {
		if len(inv.Args) != 1 {
			return table.WarningResult(inv.Location, "%s expects exactly one argument (the releases file), got %d", inv.Name, len(inv.Args)), nil
		}
		return rd.RenderTimeline(invocationContext(env, inv), env.ResolvePath(inv, inv.Args[0])), nil
	})

	filtered := Func(func(env Env, inv Invocation) (table.Result, error) {
		if len(inv.Args) < 2 {
			return table.WarningResult(inv.Location, "%s expects the releases file followed by at least one code name", inv.Name), nil
		}
		res, err := rd.RenderFilteredTimeline(invocationContext(env, inv), env.ResolvePath(inv, inv.Args[0]), inv.Args[1:])
		if err != nil {
			return table.Result{}, xerrors.Errorf("%s: %w", inv.Location, err)
		}
		return res, nil
	})

	builtins := []struct {
		name string
		d    Directive
	}{
		{names.Summary, summary},
		{names.Timeline, timeline},
		{names.FilteredTimeline, filtered},
	}
	for _, b := range builtins {
		if err := reg.Register(b.name, b.d); err != nil {
			return xerrors.Errorf("failed to register %s: %w", b.name, err)
		}
	}
	return nil
}

func withDefaults(n Names) Names {
	def := DefaultNames()
	if n.Summary == "" {
		n.Summary = def.Summary
	}
	if n.Timeline == "" {
		n.Timeline = def.Timeline
	}
	if n.FilteredTimeline == "" {
		n.FilteredTimeline = def.FilteredTimeline
	}
	return n
}

func invocationContext(env Env, inv Invocation) Context {
	return Context{Location: inv.Location, Tracker: env.Tracker}
}
