package releases

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// DataLoadError is returned when a releases file cannot be opened, read,
// parsed or does not match the expected schema.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load releases file %s: %s", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

type Loader struct {
	appFs afero.Fs
}

type option func(*Loader)

func WithFs(fs afero.Fs) option {
	return func(l *Loader) {
		l.appFs = fs
	}
}

func NewLoader(opts ...option) Loader {
	l := Loader{
		appFs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Load reads and validates the releases file at path. The file is read on
// every call; nothing is cached. Every failure is a *DataLoadError.
func (l Loader) Load(path string) (Releases, error) {
	f, err := l.appFs.Open(path)
	if err != nil {
		return Releases{}, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	rels, err := Decode(f)
	if err != nil {
		return Releases{}, &DataLoadError{Path: path, Err: err}
	}
	return rels, nil
}

type document struct {
	Releases    *lineList        `yaml:"releases"`
	Development *DevelopmentLine `yaml:"development"`
}

// lineList decodes the "releases" mapping while keeping its key order.
type lineList []ReleaseLine

func (ll *lineList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var order yaml.MapSlice
	if err := unmarshal(&order); err != nil {
		return err
	}
	// Keyed by the resolved key, so every entry of order finds its value.
	var byKey map[interface{}]ReleaseLine
	if err := unmarshal(&byKey); err != nil {
		return err
	}

	lines := make([]ReleaseLine, 0, len(order))
	for _, item := range order {
		name, ok := item.Key.(string)
		if !ok {
			// YAML turned the key into a number or a boolean, and its
			// original spelling is gone.
			return xerrors.Errorf("code name %v is not a string, quote it", item.Key)
		}
		line := byKey[item.Key]
		line.CodeName = name
		lines = append(lines, line)
	}
	*ll = lines
	return nil
}

// Decode parses and validates a releases document.
func Decode(r io.Reader) (Releases, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Releases{}, xerrors.New("empty releases document")
		}
		return Releases{}, xerrors.Errorf("unable to decode YAML: %w", err)
	}
	if doc.Releases == nil {
		return Releases{}, xerrors.New(`missing "releases" mapping`)
	}

	rels := Releases{Lines: *doc.Releases}
	if doc.Development != nil {
		rels.Development = *doc.Development
	}

	if err := validate(rels); err != nil {
		return Releases{}, err
	}
	return rels, nil
}

func validate(rels Releases) error {
	names := lo.Map(rels.Lines, func(l ReleaseLine, _ int) string {
		return l.CodeName
	})
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return xerrors.Errorf("duplicate code names: %v", dups)
	}

	for _, line := range rels.Lines {
		if line.CodeName == "" {
			return xerrors.New("release line with an empty code name")
		}
		if err := validatePoints(line.Releases); err != nil {
			return xerrors.Errorf("release line %s: %w", line.CodeName, err)
		}
	}
	if err := validatePoints(rels.Development.Releases); err != nil {
		return xerrors.Errorf("development: %w", err)
	}
	return nil
}

func validatePoints(points []PointRelease) error {
	for i, p := range points {
		if p.Version == "" {
			return xerrors.Errorf("release #%d has no version", i+1)
		}
		if p.Released == "" {
			return xerrors.Errorf("release %s has no release date", p.Version)
		}
	}
	return nil
}

// CodeNames returns the code names in file order.
func (r Releases) CodeNames() []string {
	return lo.Map(r.Lines, func(l ReleaseLine, _ int) string {
		return l.CodeName
	})
}

// Line returns the release line with the given code name.
func (r Releases) Line(codeName string) (ReleaseLine, bool) {
	return lo.Find(r.Lines, func(l ReleaseLine) bool {
		return l.CodeName == codeName
	})
}

// PointReleaseCount is the number of point releases across all lines,
// development included.
func (r Releases) PointReleaseCount() int {
	return lo.SumBy(r.Lines, func(l ReleaseLine) int {
		return len(l.Releases)
	}) + len(r.Development.Releases)
}
