package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceph/releasedocs/fetch"
)

func TestConfig_Fetch(t *testing.T) {
	tests := []struct {
		name         string
		releasesFile string
		existing     string
		wantLines    []string
		wantErr      string
	}{
		{
			name:         "happy path",
			releasesFile: "testdata/releases.yml",
			wantLines:    []string{"mimic", "luminous", "jewel"},
		},
		{
			name:         "sad path - 404",
			releasesFile: "",
			existing:     "releases: {}\n",
			wantErr:      "bad response code: 404",
		},
		{
			name:         "sad path - invalid releases file",
			releasesFile: "testdata/invalid.yml",
			existing:     "releases: {}\n",
			wantErr:      "release #1 has no version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.releasesFile == "" {
					http.NotFound(w, r)
					return
				}
				http.ServeFile(w, r, tt.releasesFile)
			}))
			defer ts.Close()

			fs := afero.NewMemMapFs()
			if tt.existing != "" {
				require.NoError(t, afero.WriteFile(fs, "/docs/releases.yml", []byte(tt.existing), 0644))
			}

			c := fetch.NewConfig(ts.URL+"/releases.yml", "/docs/releases.yml", fetch.WithFs(fs))
			rels, err := c.Fetch(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)

				got, err := afero.ReadFile(fs, "/docs/releases.yml")
				require.NoError(t, err)
				assert.Equal(t, tt.existing, string(got), "existing file is kept")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLines, rels.CodeNames())

			want, err := os.ReadFile(tt.releasesFile)
			require.NoError(t, err)
			got, err := afero.ReadFile(fs, "/docs/releases.yml")
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}
