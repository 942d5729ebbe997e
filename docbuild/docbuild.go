package docbuild

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/directive"
	"github.com/ceph/releasedocs/table"
)

var DefaultPatterns = []string{"**/*.rst", "**/*.md"}

var markdownConverter = goldmark.New(goldmark.WithExtensions(extension.GFM))

type Builder struct {
	appFs    afero.Fs
	registry *directive.Registry
	srcDir   string
	outDir   string
	patterns []string
	html     bool
	progress bool
}

type option func(*Builder)

func WithFs(fs afero.Fs) option {
	return func(b *Builder) {
		b.appFs = fs
	}
}

// WithPatterns sets the doublestar patterns, relative to the source root,
// that select documents.
func WithPatterns(patterns []string) option {
	return func(b *Builder) {
		if len(patterns) > 0 {
			b.patterns = patterns
		}
	}
}

// WithHTML additionally converts Markdown documents to HTML.
func WithHTML(html bool) option {
	return func(b *Builder) {
		b.html = html
	}
}

func WithProgress(progress bool) option {
	return func(b *Builder) {
		b.progress = progress
	}
}

func NewBuilder(registry *directive.Registry, srcDir, outDir string, opts ...option) *Builder {
	b := &Builder{
		appFs:    afero.NewOsFs(),
		registry: registry,
		srcDir:   filepath.Clean(srcDir),
		outDir:   filepath.Clean(outDir),
		patterns: DefaultPatterns,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) SrcDir() string {
	return b.srcDir
}

// Matches reports whether path (absolute, or relative to the working
// directory) is a source document of this build.
func (b *Builder) Matches(path string) bool {
	if !within(b.srcDir, path) || b.IsOutput(path) {
		return false
	}
	rel, err := filepath.Rel(b.srcDir, path)
	if err != nil {
		return false
	}
	return b.matchRel(rel)
}

func (b *Builder) matchRel(rel string) bool {
	for _, pattern := range b.patterns {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

// IsOutput reports whether path lies in the output directory.
func (b *Builder) IsOutput(path string) bool {
	return within(b.outDir, path)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CheckDirs rejects an output directory that would overwrite the sources
// or hide them from discovery. Relative paths are taken from the working
// directory.
func CheckDirs(srcDir, outDir string) error {
	src, err := filepath.Abs(srcDir)
	if err != nil {
		return xerrors.Errorf("unable to resolve %s: %w", srcDir, err)
	}
	out, err := filepath.Abs(outDir)
	if err != nil {
		return xerrors.Errorf("unable to resolve %s: %w", outDir, err)
	}
	if within(out, src) {
		return xerrors.Errorf("output directory %s must not be the source directory %s or contain it", outDir, srcDir)
	}
	return nil
}

// Report summarises a build.
type Report struct {
	// Documents are relative to the source root.
	Documents []string
	Warnings  []table.Warning
	// Dependencies lists every source document and every data file a
	// directive read, or tried to read.
	Dependencies []string
}

func (b *Builder) Build(ctx context.Context) (Report, error) {
	if err := CheckDirs(b.srcDir, b.outDir); err != nil {
		return Report{}, err
	}

	docs, err := b.discover()
	if err != nil {
		return Report{}, xerrors.Errorf("failed to discover documents: %w", err)
	}
	log.Printf("Building %d documents from %s into %s", len(docs), b.srcDir, b.outDir)

	deps := directive.NewDependencies()
	env := directive.Env{SrcDir: b.srcDir, Tracker: deps}

	var bar *pb.ProgressBar
	if b.progress && len(docs) > 1 {
		bar = pb.StartNew(len(docs))
	}

	report := Report{Documents: docs}
	for _, rel := range docs {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		warnings, err := b.buildDocument(env, deps, rel)
		if err != nil {
			return Report{}, xerrors.Errorf("failed to build %s: %w", rel, err)
		}
		for _, w := range warnings {
			log.Printf("WARNING: %s", w)
		}
		report.Warnings = append(report.Warnings, warnings...)

		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	report.Dependencies = deps.Paths()
	log.Printf("Built %d documents with %d warnings", len(docs), len(report.Warnings))
	return report, nil
}

func (b *Builder) buildDocument(env directive.Env, deps *directive.Dependencies, rel string) ([]table.Warning, error) {
	srcPath := filepath.Join(b.srcDir, rel)
	deps.NoteDependency(srcPath)

	content, err := afero.ReadFile(b.appFs, srcPath)
	if err != nil {
		return nil, xerrors.Errorf("unable to read %s: %w", srcPath, err)
	}

	expanded, warnings, err := Expand(env, b.registry, rel, content, writerFor(rel))
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(b.outDir, rel)
	if err = b.write(outPath, []byte(expanded)); err != nil {
		return nil, err
	}

	if b.html && isMarkdown(rel) {
		var buf bytes.Buffer
		if err = markdownConverter.Convert([]byte(expanded), &buf); err != nil {
			return nil, xerrors.Errorf("failed to convert %s to HTML: %w", rel, err)
		}
		htmlPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".html"
		if err = b.write(htmlPath, buf.Bytes()); err != nil {
			return nil, err
		}
	}
	return warnings, nil
}

func (b *Builder) write(path string, data []byte) error {
	if err := b.appFs.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return xerrors.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(b.appFs, path, data, 0644); err != nil {
		return xerrors.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// discover returns matching documents relative to the source root, in
// lexical order. The output directory and hidden directories are skipped.
func (b *Builder) discover() ([]string, error) {
	var docs []string
	err := afero.Walk(b.appFs, b.srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return xerrors.Errorf("file walk error: %w", err)
		}
		if info.IsDir() {
			if path != b.srcDir && (b.IsOutput(path) || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(b.srcDir, path)
		if err != nil {
			return xerrors.Errorf("unable to relativize %s: %w", path, err)
		}
		if b.matchRel(rel) {
			docs = append(docs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
