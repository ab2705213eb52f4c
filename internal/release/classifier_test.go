package release

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snatcher/internal/tv"
)

type absoluteShow struct {
	tv.StaticShow
}

// 12 episodes per season
func (s *absoluteShow) SceneEpisode(absolute int) (int, int, bool) {
	if absolute < 1 {
		return 0, 0, false
	}
	return (absolute-1)/12 + 1, (absolute-1)%12 + 1, true
}

func TestClassifyEpisodes(t *testing.T) {
	show := &tv.StaticShow{Title: "Show"}
	c := NewClassifier()

	tests := []struct {
		title    string
		season   int
		episodes []int
		quality  tv.Quality
		group    string
		proper   bool
	}{
		{"Show.S01E02.720p.HDTV.x264-GRP", 1, []int{2}, tv.QualityHDTV, "GRP", false},
		{"Show.S01E01E02.1080p.WEB-DL.DD5.1.H.264-GRP", 1, []int{1, 2}, tv.QualityFullHDWebDL, "GRP", false},
		{"Show.S01E01-E03.720p.HDTV.x264-GRP", 1, []int{1, 2, 3}, tv.QualityHDTV, "GRP", false},
		{"Show.S02.720p.BluRay.x264-GRP", 2, nil, tv.QualityHDBluRay, "GRP", false},
		{"Show.S01E05.PROPER.720p.HDTV.x264-GRP", 1, []int{5}, tv.QualityHDTV, "GRP", true},
		{"Show 3x07 HDTV XviD-GRP", 3, []int{7}, tv.QualitySDTV, "GRP", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			rel, err := c.Classify(show, tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.season, rel.Season)
			assert.Equal(t, tt.episodes, rel.Episodes)
			assert.Equal(t, tt.quality, rel.Quality)
			assert.Equal(t, tt.group, rel.ReleaseGroup)
			assert.Equal(t, tt.proper, rel.IsProper)
			assert.Equal(t, len(tt.episodes) == 0, rel.IsSeasonPack())
		})
	}
}

func TestClassifyAnime(t *testing.T) {
	show := &tv.StaticShow{Title: "Shingeki no Kyojin", Anime: true}
	c := NewClassifier()

	rel, err := c.Classify(show, "[HorribleSubs] Shingeki no Kyojin - 05v2 [720p].mkv")
	require.NoError(t, err)
	assert.Equal(t, 1, rel.Season)
	assert.Equal(t, []int{5}, rel.Episodes)
	assert.Equal(t, "HorribleSubs", rel.ReleaseGroup)
	assert.True(t, rel.IsProper)
	assert.Equal(t, tv.QualityHDTV, rel.Quality)

	rel, err = c.Classify(show, "[Grp] Shingeki no Kyojin - 01-03 [1080p]")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rel.Episodes)
	assert.False(t, rel.IsProper)

	mapped := &absoluteShow{tv.StaticShow{Title: "Shingeki no Kyojin", Anime: true}}
	rel, err = c.Classify(mapped, "[Grp] Shingeki no Kyojin - 14 [720p]")
	require.NoError(t, err)
	assert.Equal(t, 2, rel.Season)
	assert.Equal(t, []int{2}, rel.Episodes)

	_, err = c.Classify(mapped, "[Grp] Shingeki no Kyojin - 11-13 [720p]")
	assert.ErrorIs(t, err, tv.ErrUnclassifiable)
}

func TestClassifyAirByDate(t *testing.T) {
	show := &tv.StaticShow{Title: "The Daily Show", AirByDate: true}

	rel, err := NewClassifier().Classify(show, "The.Daily.Show.2013.01.05.720p.HDTV.x264-GRP")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 1, 5, 0, 0, 0, 0, time.UTC), rel.AirDate)
	assert.Empty(t, rel.Episodes)

	show.Aired = map[string]tv.SeasonEpisode{"2013-01-05": {Season: 18, Episode: 3}}
	rel, err = NewClassifier().Classify(show, "The.Daily.Show.2013.01.05.720p.HDTV.x264-GRP")
	require.NoError(t, err)
	assert.Equal(t, 18, rel.Season)
	assert.Equal(t, []int{3}, rel.Episodes)
	assert.Equal(t, tv.QualityHDTV, rel.Quality)
}

func TestClassifyRejects(t *testing.T) {
	show := &tv.StaticShow{Title: "Show"}
	c := NewClassifier()

	for _, title := range []string{
		"",
		"Other.S01E01.720p.HDTV.x264-GRP",
	} {
		_, err := c.Classify(show, title)
		assert.ErrorIs(t, err, tv.ErrUnclassifiable, title)
	}
}

func TestMatchesShow(t *testing.T) {
	assert.True(t, MatchesShow("Bob's Burgers", "Bobs.Burgers.S01E01.720p.HDTV"))
	assert.True(t, MatchesShow("The Office (US)", "The.Office.US.S01E01"))
	assert.False(t, MatchesShow("The Office (US)", "The.Office.S01E01"))
	assert.True(t, MatchesShow("", "anything"))
}

func TestIsProperTitle(t *testing.T) {
	assert.True(t, IsProperTitle("Show.S01E01.REPACK.720p"))
	assert.True(t, IsProperTitle("[Grp] Show - 03v3 [720p]"))
	assert.True(t, IsProperTitle("[Grp] Show - 03 v2 [720p]"))
	assert.False(t, IsProperTitle("Show.S01E01.720p.HDTV"))
	assert.False(t, IsProperTitle("Improper.Show.S01E01"))
}
