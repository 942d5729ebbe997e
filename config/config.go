package config

import (
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/ceph/releasedocs/directive"
	"github.com/ceph/releasedocs/docbuild"
	"github.com/ceph/releasedocs/utils"
)

const (
	FileName = "releasedocs.yaml"

	envProduct = "RELEASEDOCS_PRODUCT"
	envSrc     = "RELEASEDOCS_SRC"
	envOut     = "RELEASEDOCS_OUT"
)

// Directives overrides the names the release directives are registered
// under. Empty fields keep the default name.
type Directives struct {
	Summary          string `yaml:"summary"`
	Timeline         string `yaml:"timeline"`
	FilteredTimeline string `yaml:"filtered_timeline"`
}

type Config struct {
	Product    string     `yaml:"product"`
	SrcDir     string     `yaml:"src"`
	OutDir     string     `yaml:"out"`
	Patterns   []string   `yaml:"patterns"`
	HTML       bool       `yaml:"html"`
	Gzip       bool       `yaml:"gzip"`
	Directives Directives `yaml:"directives"`
}

func Default() Config {
	return Config{
		Product:  "Ceph",
		SrcDir:   ".",
		OutDir:   "_build",
		Patterns: docbuild.DefaultPatterns,
	}
}

// Load reads the config file at path on top of the defaults and then applies
// environment overrides. A missing file is only an error when required is set.
func Load(fs afero.Fs, path string, required bool) (Config, error) {
	c := Default()

	exists, err := utils.Exists(fs, path)
	if err != nil {
		return Config{}, xerrors.Errorf("unable to stat %s: %w", path, err)
	}
	switch {
	case exists:
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, xerrors.Errorf("unable to read %s: %w", path, err)
		}
		var fc Config
		if err = yaml.UnmarshalStrict(b, &fc); err != nil {
			return Config{}, xerrors.Errorf("unable to parse %s: %w", path, err)
		}
		c = c.merge(fc)
	case required:
		return Config{}, xerrors.Errorf("config file %s does not exist", path)
	}

	c.Product = utils.LookupEnv(envProduct, c.Product)
	c.SrcDir = utils.LookupEnv(envSrc, c.SrcDir)
	c.OutDir = utils.LookupEnv(envOut, c.OutDir)

	if err = c.Validate(); err != nil {
		return Config{}, xerrors.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func (c Config) merge(o Config) Config {
	c.Product = lo.Ternary(o.Product != "", o.Product, c.Product)
	c.SrcDir = lo.Ternary(o.SrcDir != "", o.SrcDir, c.SrcDir)
	c.OutDir = lo.Ternary(o.OutDir != "", o.OutDir, c.OutDir)
	if len(o.Patterns) > 0 {
		c.Patterns = o.Patterns
	}
	c.HTML = c.HTML || o.HTML
	c.Gzip = c.Gzip || o.Gzip
	c.Directives = o.Directives
	return c
}

// Names resolves the directive names, falling back to the defaults.
func (c Config) Names() directive.Names {
	def := directive.DefaultNames()
	return directive.Names{
		Summary:          lo.Ternary(c.Directives.Summary != "", c.Directives.Summary, def.Summary),
		Timeline:         lo.Ternary(c.Directives.Timeline != "", c.Directives.Timeline, def.Timeline),
		FilteredTimeline: lo.Ternary(c.Directives.FilteredTimeline != "", c.Directives.FilteredTimeline, def.FilteredTimeline),
	}
}

func (c Config) Validate() error {
	if c.Product == "" {
		return xerrors.New("product must not be empty")
	}
	if err := docbuild.CheckDirs(c.SrcDir, c.OutDir); err != nil {
		return err
	}
	n := c.Names()
	if dups := lo.FindDuplicates([]string{n.Summary, n.Timeline, n.FilteredTimeline}); len(dups) > 0 {
		return xerrors.Errorf("directive names must be distinct: %v", dups)
	}
	return nil
}
