package directive

import (
	"path/filepath"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Dependencies is a DependencyTracker that collects a set of paths.
type Dependencies struct {
	paths map[string]struct{}
}

func NewDependencies() *Dependencies {
	return &Dependencies{paths: map[string]struct{}{}}
}

func (d *Dependencies) NoteDependency(path string) {
	d.paths[filepath.Clean(path)] = struct{}{}
}

func (d *Dependencies) Has(path string) bool {
	_, ok := d.paths[filepath.Clean(path)]
	return ok
}

// Paths returns the recorded paths, sorted.
func (d *Dependencies) Paths() []string {
	paths := lo.Keys(d.paths)
	slices.Sort(paths)
	return paths
}
