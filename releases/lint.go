package releases

import (
	"fmt"
	"regexp"

	"github.com/araddon/dateparse"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Finding is a problem in a releases file that does not stop rendering but
// may produce misleading tables.
type Finding struct {
	CodeName string
	Version  string
	Message  string
}

func (f Finding) String() string {
	if f.Version == "" {
		return fmt.Sprintf("%s: %s", f.CodeName, f.Message)
	}
	return fmt.Sprintf("%s %s: %s", f.CodeName, f.Version, f.Message)
}

// Lint reports dates that will not sort lexically, point releases listed
// out of order and lines whose release date disagrees with their first
// point release.
func Lint(rels Releases) []Finding {
	var findings []Finding
	for _, line := range rels.Lines {
		if line.Released != "" {
			findings = append(findings, lintDate(line.CodeName, "", "released", line.Released)...)
		}
		if line.TargetEOL != "" {
			findings = append(findings, lintDate(line.CodeName, "", "target_eol", line.TargetEOL)...)
		}
		if line.ActualEOL != "" {
			findings = append(findings, lintDate(line.CodeName, "", "actual_eol", line.ActualEOL)...)
		}
		findings = append(findings, lintPoints(line.CodeName, line.Releases)...)

		if first := earliest(line.Releases); first != "" && line.Released != "" && first != line.Released {
			findings = append(findings, Finding{
				CodeName: line.CodeName,
				Message:  fmt.Sprintf("released %s differs from the first point release %s", line.Released, first),
			})
		}
	}
	findings = append(findings, lintPoints(Development, rels.Development.Releases)...)
	return findings
}

func lintPoints(codeName string, points []PointRelease) []Finding {
	var findings []Finding
	for i, p := range points {
		findings = append(findings, lintDate(codeName, p.Version, "released", p.Released)...)
		// Point releases are listed newest first.
		if i > 0 && p.Released > points[i-1].Released {
			findings = append(findings, Finding{
				CodeName: codeName,
				Version:  p.Version,
				Message:  fmt.Sprintf("listed after %s but released later", points[i-1].Version),
			})
		}
	}
	return findings
}

func lintDate(codeName, version, field, value string) []Finding {
	if isoDate.MatchString(value) {
		return nil
	}
	msg := fmt.Sprintf("%s %q is not a YYYY-MM-DD date and will not sort correctly", field, value)
	if t, err := dateparse.ParseAny(value); err == nil {
		msg = fmt.Sprintf("%s %q is not a YYYY-MM-DD date (did you mean %s?)", field, value, t.Format("2006-01-02"))
	}
	return []Finding{{CodeName: codeName, Version: version, Message: msg}}
}

func earliest(points []PointRelease) string {
	var first string
	for _, p := range points {
		if first == "" || p.Released < first {
			first = p.Released
		}
	}
	return first
}
