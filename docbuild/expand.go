package docbuild

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/directive"
	"github.com/ceph/releasedocs/table"
)

// directiveLine matches ".. name:: args" at the start of a line. The same
// syntax is used in reStructuredText and Markdown sources.
var directiveLine = regexp.MustCompile(`^\.\.\s+([\w-]+)::(.*)$`)

// Expand replaces every invocation of a registered directive in content
// with its rendered result. Lines naming other directives are left alone,
// as are fenced code blocks in Markdown. path is the document path relative
// to the source root and is used for locations.
func Expand(env directive.Env, reg *directive.Registry, path string, content []byte, w table.Writer) (string, []table.Warning, error) {
	markdown := isMarkdown(path)
	lines := strings.Split(string(content), "\n")

	var (
		out         []string
		warnings    []table.Warning
		inFence     bool
		needBlankAt = -1
	)
	for i, line := range lines {
		if needBlankAt == len(out) && strings.TrimSpace(line) != "" {
			out = append(out, "")
		}

		if markdown && isFence(line) {
			inFence = !inFence
		}
		m := directiveLine.FindStringSubmatch(line)
		if inFence || m == nil || !reg.Has(m[1]) {
			out = append(out, line)
			continue
		}

		inv := directive.Invocation{
			Name: m[1],
			Args: strings.Fields(m[2]),
			Location: table.Location{
				File: filepath.ToSlash(path),
				Line: i + 1,
			},
		}
		res, err := reg.Run(env, inv)
		if err != nil {
			return "", nil, err
		}
		rendered, err := table.Render(w, res)
		if err != nil {
			return "", nil, xerrors.Errorf("%s: %w", inv.Location, err)
		}
		if res.Warning != nil {
			warnings = append(warnings, *res.Warning)
		}

		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, strings.TrimSuffix(rendered, "\n"))
		needBlankAt = len(out)
	}
	return strings.Join(out, "\n"), warnings, nil
}

func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// writerFor picks the table format matching the document's markup.
func writerFor(path string) table.Writer {
	if isMarkdown(path) {
		return table.Markdown{}
	}
	return table.RSTGrid{}
}
