package export

import (
	"bytes"
	"encoding/json"
	"log"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/releases"
	"github.com/ceph/releasedocs/utils"
)

const fileName = "releases.json"

// SiteData is the document the documentation site reads to build its
// release selector and end-of-life banner.
type SiteData struct {
	Releases    map[string]releases.ReleaseLine `json:"releases"`
	Development releases.DevelopmentLine        `json:"development"`
	// Order lists code names by most recent point release, newest first.
	Order []string `json:"order"`
	// EOL lists the code names that have reached end of life.
	EOL []string `json:"eol"`
}

type Config struct {
	appFs  afero.Fs
	outDir string
	gzip   bool
}

type option func(*Config)

func WithFs(fs afero.Fs) option {
	return func(c *Config) {
		c.appFs = fs
	}
}

// WithGzip also writes a gzip-compressed copy next to releases.json.
func WithGzip(gz bool) option {
	return func(c *Config) {
		c.gzip = gz
	}
}

func NewConfig(outDir string, opts ...option) Config {
	c := Config{
		appFs:  afero.NewOsFs(),
		outDir: outDir,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Export loads the releases file at path and writes releases.json into the
// output directory. It returns the paths written.
func (c Config) Export(path string) ([]string, error) {
	rels, err := releases.NewLoader(releases.WithFs(c.appFs)).Load(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to load releases: %w", err)
	}

	data := NewSiteData(rels)
	jsonPath := filepath.Join(c.outDir, fileName)
	log.Printf("Writing %d release lines to %s", len(data.Order), jsonPath)

	fs := utils.NewFs(c.appFs)
	if err = fs.WriteJSON(jsonPath, data); err != nil {
		return nil, xerrors.Errorf("failed to write %s: %w", jsonPath, err)
	}
	written := []string{jsonPath}

	if c.gzip {
		gzPath := jsonPath + ".gz"
		if err = c.writeGzip(fs, jsonPath, gzPath); err != nil {
			return nil, err
		}
		written = append(written, gzPath)
	}
	return written, nil
}

func (c Config) writeGzip(fs utils.Fs, src, dst string) error {
	b, err := afero.ReadFile(c.appFs, src)
	if err != nil {
		return xerrors.Errorf("unable to read %s: %w", src, err)
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return xerrors.Errorf("failed to create gzip writer: %w", err)
	}
	zw.Name = fileName
	if _, err = zw.Write(b); err != nil {
		return xerrors.Errorf("failed to compress %s: %w", src, err)
	}
	if err = zw.Close(); err != nil {
		return xerrors.Errorf("failed to compress %s: %w", src, err)
	}

	if err = fs.WriteFile(dst, buf.Bytes()); err != nil {
		return xerrors.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func NewSiteData(rels releases.Releases) SiteData {
	lines := slices.Clone(rels.Lines)
	slices.SortStableFunc(lines, func(a, b releases.ReleaseLine) int {
		return strings.Compare(b.Latest(), a.Latest())
	})

	return SiteData{
		Releases: lo.SliceToMap(rels.Lines, func(l releases.ReleaseLine) (string, releases.ReleaseLine) {
			if l.Releases == nil {
				l.Releases = []releases.PointRelease{}
			}
			return l.CodeName, l
		}),
		Development: releases.DevelopmentLine{
			Releases: lo.Ternary(rels.Development.Releases == nil, []releases.PointRelease{}, rels.Development.Releases),
		},
		Order: lo.Map(lines, func(l releases.ReleaseLine, _ int) string {
			return l.CodeName
		}),
		EOL: lo.FilterMap(rels.Lines, func(l releases.ReleaseLine, _ int) (string, bool) {
			return l.CodeName, l.IsEOL()
		}),
	}
}

// Decode reads a releases.json document, as written by Export.
func Decode(b []byte) (SiteData, error) {
	var data SiteData
	if err := json.Unmarshal(b, &data); err != nil {
		return SiteData{}, xerrors.Errorf("unable to parse JSON: %w", err)
	}
	return data, nil
}
