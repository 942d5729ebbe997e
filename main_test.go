package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceph/releasedocs/config"
	"github.com/ceph/releasedocs/directive"
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
`

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		format    table.Format
		args      []string
		want      string
		wantErr   string
	}{
		{
			name:      "relative path",
			directive: directive.SummaryName,
			format:    table.FormatMarkdown,
			args:      []string{"docs/releases.yml"},
			want: `| Version | Release date | End of life |
| --- | --- | --- |
| mimic | 2018-06-01 | 2020-06-01 |
| luminous | 2017-08-29 | -- |
`,
		},
		{
			name:      "absolute path",
			directive: directive.TimelineName,
			format:    table.FormatMarkdown,
			args:      []string{"/data/releases.yml"},
			want: `| Version | Code name | Release date | End of life |
| --- | --- | --- | --- |
| Ceph 13.2.0 | mimic | 2018-06-01 | -- |
| Ceph 12.2.0 | luminous | 2017-08-29 | -- |
`,
		},
		{
			name:      "filtered timeline",
			directive: directive.FilteredTimelineName,
			format:    table.FormatMarkdown,
			args:      []string{"/data/releases.yml", "luminous", "mimic"},
			want: `| Date | luminous | mimic |
| --- | --- | --- |
| 2018-06-01 | -- | 13.2.0 |
| 2017-08-29 | 12.2.0 | -- |
`,
		},
		{
			name:      "missing file is written and reported",
			directive: directive.SummaryName,
			format:    table.FormatMarkdown,
			args:      []string{"/data/missing.yml"},
			want:      "> **Warning:** <command line>: Failed to open releases file /data/missing.yml: open /data/missing.yml: file does not exist\n",
			wantErr:   "Failed to open releases file /data/missing.yml",
		},
		{
			name:      "unknown directive",
			directive: "ceph_nope",
			format:    table.FormatMarkdown,
			args:      []string{"/data/releases.yml"},
			want:      "> **Warning:** <command line>: Unknown directive \"ceph_nope\"\n",
			wantErr:   `Unknown directive "ceph_nope"`,
		},
		{
			name:      "unknown format",
			directive: directive.SummaryName,
			format:    "pdf",
			args:      []string{"/data/releases.yml"},
			wantErr:   `unknown format "pdf"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "docs/releases.yml", []byte(releasesYAML), 0644))
			require.NoError(t, afero.WriteFile(fs, "/data/releases.yml", []byte(releasesYAML), 0644))

			var out bytes.Buffer
			err := render(&out, fs, config.Default(), tt.directive, tt.format, tt.args)
			assert.Equal(t, tt.want, out.String())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLint(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr string
	}{
		{
			name:    "clean file",
			content: releasesYAML,
		},
		{
			name: "findings fail the run",
			content: `releases:
  mimic:
    releases:
      - version: 13.2.0
        released: 2018-6-1
`,
			want:    "mimic 13.2.0: released \"2018-6-1\" is not a YYYY-MM-DD date (did you mean 2018-06-01?)\n",
			wantErr: "1 findings in /data/releases.yml",
		},
		{
			name:    "unreadable file",
			wantErr: "failed to load releases file /data/releases.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != "" {
				require.NoError(t, afero.WriteFile(fs, "/data/releases.yml", []byte(tt.content), 0644))
			}

			var out bytes.Buffer
			err := lint(&out, fs, "/data/releases.yml")
			assert.Equal(t, tt.want, out.String())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
