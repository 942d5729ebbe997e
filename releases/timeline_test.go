package releases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceph/releasedocs/releases"
)

func loadTestdata(t *testing.T) releases.Releases {
	t.Helper()
	rels, err := releases.NewLoader().Load("testdata/releases.yml")
	require.NoError(t, err)
	return rels
}

func TestReleases_Timeline(t *testing.T) {
	rels := loadTestdata(t)

	got := rels.Timeline()
	want := []releases.TimelineRow{
		{Released: "2018-07-27", CodeName: "mimic", Version: "13.2.1", EOL: "--"},
		{Released: "2018-07-16", CodeName: "luminous", Version: "12.2.7", EOL: "--"},
		{Released: "2018-07-11", CodeName: "jewel", Version: "10.2.11", EOL: "--"},
		{Released: "2018-06-01", CodeName: "mimic", Version: "13.2.0", EOL: "--"},
		{Released: "2018-05-11", CodeName: "development", Version: "13.1.0", EOL: "--", Development: true},
		{Released: "2018-04-16", CodeName: "development", Version: "13.0.2", EOL: "--", Development: true},
		{Released: "2017-09-28", CodeName: "luminous", Version: "12.2.1", EOL: "--"},
		{Released: "2017-08-29", CodeName: "luminous", Version: "12.2.0", EOL: "--"},
		{Released: "2016-04-21", CodeName: "jewel", Version: "10.2.0", EOL: "--"},
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, rels.PointReleaseCount())
}

func TestReleases_FilteredTimeline(t *testing.T) {
	rels := loadTestdata(t)

	tests := []struct {
		name     string
		selected []string
		want     []string
	}{
		{
			name:     "single line",
			selected: []string{"luminous"},
			want:     []string{"12.2.7", "12.2.1", "12.2.0"},
		},
		{
			name:     "two lines interleave by date",
			selected: []string{"mimic", "jewel"},
			want:     []string{"13.2.1", "10.2.11", "13.2.0", "10.2.0"},
		},
		{
			name:     "development line",
			selected: []string{"development", "mimic"},
			want:     []string{"13.2.1", "13.2.0", "13.1.0", "13.0.2"},
		},
		{
			name:     "unknown name",
			selected: []string{"kraken"},
		},
		{
			name: "nothing selected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rels.FilteredTimeline(tt.selected)
			versions := make([]string, 0, len(got))
			for _, row := range got {
				versions = append(versions, row.Version)
			}
			if tt.want == nil {
				assert.Empty(t, versions)
				return
			}
			assert.Equal(t, tt.want, versions)
		})
	}
}

func TestSortByDate(t *testing.T) {
	rows := []releases.TimelineRow{
		{Released: "2018-01-01", Version: "a"},
		{Released: "2019-01-01", Version: "b"},
		{Released: "2018-01-01", Version: "c"},
		{Released: "2017-01-01", Version: "d"},
		{Released: "2019-01-01", Version: "e"},
	}
	releases.SortByDate(rows)

	var got []string
	for _, row := range rows {
		got = append(got, row.Version)
	}
	assert.Equal(t, []string{"b", "e", "a", "c", "d"}, got)
}

func TestSortByDate_Lexical(t *testing.T) {
	// Dates are compared as strings: an unpadded month sorts after "10".
	rows := []releases.TimelineRow{
		{Released: "2018-10-01", Version: "october"},
		{Released: "2018-9-01", Version: "september"},
	}
	releases.SortByDate(rows)
	assert.Equal(t, "september", rows[0].Version)
}
