package docbuild_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceph/releasedocs/directive"
	"github.com/ceph/releasedocs/docbuild"
	"github.com/ceph/releasedocs/table"
)

const releasesYAML = `releases:
  mimic:
    released: 2018-06-01
    target_eol: 2020-06-01
    releases:
      - version: 13.2.0
        released: 2018-06-01
  luminous:
    released: 2017-08-29
    releases:
      - version: 12.2.0
        released: 2017-08-29
development:
  releases:
    - version: 13.1.0
      released: 2018-05-11
`

func newRegistry(t *testing.T, fs afero.Fs) *directive.Registry {
	t.Helper()
	reg := directive.NewRegistry()
	require.NoError(t, directive.Register(reg, directive.NewRenderer(directive.WithFs(fs)), directive.DefaultNames()))
	return reg
}

func TestExpand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/releases.yml", []byte(releasesYAML), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/releases/releases.yml", []byte(releasesYAML), 0644))
	reg := newRegistry(t, fs)
	env := directive.Env{SrcDir: "/src"}

	tests := []struct {
		name         string
		path         string
		content      string
		want         string
		wantWarnings []string
	}{
		{
			name: "rst summary",
			path: "index.rst",
			content: `Releases
========
.. ceph_releases:: releases.yml
Some text.

.. note:: keep me
`,
			want: `Releases
========

+----------+--------------+-------------+
| Version  | Release date | End of life |
+==========+==============+=============+
| mimic    | 2018-06-01   | 2020-06-01  |
+----------+--------------+-------------+
| luminous | 2017-08-29   | --          |
+----------+--------------+-------------+

Some text.

.. note:: keep me
`,
		},
		{
			name: "markdown filtered timeline skips fenced code",
			path: "releases/notes.md",
			content: "# Timeline\n\n" +
				".. ceph_timeline_filtered:: /releases/releases.yml development mimic\n\n" +
				"```text\n" +
				".. ceph_releases:: releases.yml\n" +
				"```\n",
			want: "# Timeline\n\n" +
				"| Date | development | mimic |\n" +
				"| --- | --- | --- |\n" +
				"| 2018-06-01 | -- | 13.2.0 |\n" +
				"| 2018-05-11 | 13.1.0 | -- |\n\n" +
				"```text\n" +
				".. ceph_releases:: releases.yml\n" +
				"```\n",
		},
		{
			name:    "missing data file becomes a warning",
			path:    "index.rst",
			content: ".. ceph_timeline:: missing.yml\n",
			want: ".. warning::\n\n" +
				"   index.rst:1: Failed to open releases file /src/missing.yml: open /src/missing.yml: file does not exist\n",
			wantWarnings: []string{
				"index.rst:1: Failed to open releases file /src/missing.yml: open /src/missing.yml: file does not exist",
			},
		},
		{
			name:    "indented directive is not expanded",
			path:    "index.rst",
			content: "::\n\n   .. ceph_releases:: releases.yml\n",
			want:    "::\n\n   .. ceph_releases:: releases.yml\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w table.Writer = table.RSTGrid{}
			if tt.path == "releases/notes.md" {
				w = table.Markdown{}
			}
			got, warnings, err := docbuild.Expand(env, reg, tt.path, []byte(tt.content), w)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var gotWarnings []string
			for _, w := range warnings {
				gotWarnings = append(gotWarnings, w.String())
			}
			assert.Equal(t, tt.wantWarnings, gotWarnings)
		})
	}
}

func TestExpand_InvariantViolation(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/releases.yml", []byte("releases:\n  development: {}\n"), 0644))
	reg := newRegistry(t, fs)

	_, _, err := docbuild.Expand(directive.Env{SrcDir: "/src"}, reg, "index.rst",
		[]byte("Intro\n\n.. ceph_timeline_filtered:: releases.yml development\n"), table.RSTGrid{})
	require.Error(t, err)

	var violation *directive.InvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, err.Error(), "index.rst:3")
}
