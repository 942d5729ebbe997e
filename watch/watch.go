package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/docbuild"
)

const defaultDebounce = 300 * time.Millisecond

type Builder interface {
	Build(ctx context.Context) (docbuild.Report, error)
	// Matches reports whether a new file at path would be a source document.
	Matches(path string) bool
	// IsOutput reports whether path lies in the build's output directory.
	IsOutput(path string) bool
	SrcDir() string
}

// Watcher rebuilds documentation whenever a source document or a file one
// of its directives read changes. Directories created under the source root
// are watched as they appear.
type Watcher struct {
	builder  Builder
	debounce time.Duration
	onBuild  func(docbuild.Report, error)
}

type option func(*Watcher)

func WithDebounce(d time.Duration) option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnBuild registers a callback invoked after every build attempt.
func WithOnBuild(fn func(docbuild.Report, error)) option {
	return func(w *Watcher) {
		w.onBuild = fn
	}
}

func New(builder Builder, opts ...option) *Watcher {
	w := &Watcher{
		builder:  builder,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once and then rebuilds on change until ctx is done. Build
// failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if _, err = w.addTree(fsw, w.builder.SrcDir()); err != nil {
		return xerrors.Errorf("failed to watch %s: %w", w.builder.SrcDir(), err)
	}

	deps := w.rebuild(ctx, fsw, map[string]struct{}{})

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fsw, ev, deps) {
				continue
			}
			log.Printf("Change detected: %s", ev)
			fire = time.After(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %s", err)
		case <-fire:
			fire = nil
			deps = w.rebuild(ctx, fsw, deps)
		}
	}
}

func (w *Watcher) relevant(fsw *fsnotify.Watcher, ev fsnotify.Event, deps map[string]struct{}) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if _, ok := deps[filepath.Clean(ev.Name)]; ok {
		return true
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if w.skipDir(ev.Name) {
				return false
			}
			found, err := w.addTree(fsw, ev.Name)
			if err != nil {
				log.Printf("Unable to watch %s: %s", ev.Name, err)
			}
			return found
		}
	}
	return w.builder.Matches(ev.Name)
}

// addTree watches dir and every directory below it, skipping hidden and
// output directories. It reports whether it saw a source document, since
// files created along with a new directory produce no events of their own.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) (bool, error) {
	var found bool
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			found = found || w.builder.Matches(path)
			return nil
		}
		if path != dir && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err = fsw.Add(path); err != nil {
			return xerrors.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
	return found, err
}

func (w *Watcher) skipDir(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".") || w.builder.IsOutput(path)
}

// rebuild runs a build and watches the directories of its dependencies.
// On failure the previous dependency set is kept.
func (w *Watcher) rebuild(ctx context.Context, fsw *fsnotify.Watcher, prev map[string]struct{}) map[string]struct{} {
	report, err := w.builder.Build(ctx)
	if w.onBuild != nil {
		w.onBuild(report, err)
	}
	if err != nil {
		log.Printf("Build failed: %s", err)
		return prev
	}

	dirs := lo.Uniq(lo.Map(report.Dependencies, func(path string, _ int) string {
		return filepath.Dir(path)
	}))
	for _, dir := range dirs {
		if err = fsw.Add(dir); err != nil {
			log.Printf("Unable to watch %s: %s", dir, err)
		}
	}

	return lo.SliceToMap(report.Dependencies, func(path string) (string, struct{}) {
		return filepath.Clean(path), struct{}{}
	})
}
