package releases

const (
	// Development is the token that selects the in-development line. It is
	// never a valid code name when the development line is selected.
	Development = "development"

	// Placeholder fills cells that have no value.
	Placeholder = "--"
)

// PointRelease is one published version within a release line.
type PointRelease struct {
	Version  string `yaml:"version" json:"version"`
	Released string `yaml:"released" json:"released"`
}

// ReleaseLine is a named release channel such as "mimic".
type ReleaseLine struct {
	CodeName  string         `yaml:"-" json:"-"`
	Released  string         `yaml:"released" json:"released,omitempty"`
	TargetEOL string         `yaml:"target_eol" json:"target_eol,omitempty"`
	ActualEOL string         `yaml:"actual_eol" json:"actual_eol,omitempty"`
	Releases  []PointRelease `yaml:"releases" json:"releases"`
}

// IsEOL reports whether the line has actually reached end of life.
func (l ReleaseLine) IsEOL() bool {
	return l.ActualEOL != ""
}

// ReleasedOrPlaceholder returns the initial release date, or Placeholder.
func (l ReleaseLine) ReleasedOrPlaceholder() string {
	return orPlaceholder(l.Released)
}

// TargetEOLOrPlaceholder returns the target end-of-life date, or Placeholder.
func (l ReleaseLine) TargetEOLOrPlaceholder() string {
	return orPlaceholder(l.TargetEOL)
}

// Latest returns the most recent point release date of the line.
func (l ReleaseLine) Latest() string {
	var latest string
	for _, r := range l.Releases {
		if r.Released > latest {
			latest = r.Released
		}
	}
	return latest
}

// DevelopmentLine holds versions that are not part of a named release yet.
type DevelopmentLine struct {
	Releases []PointRelease `yaml:"releases" json:"releases"`
}

// Releases is the validated content of a releases file. Lines keep the
// order in which they appear in the file.
type Releases struct {
	Lines       []ReleaseLine
	Development DevelopmentLine
}

// TimelineRow is a single point release flattened out of its line.
type TimelineRow struct {
	Released string
	// CodeName is the owning line's code name, or Development.
	CodeName    string
	Version     string
	EOL         string
	Development bool
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
