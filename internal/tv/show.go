package tv

import (
	"fmt"
	"time"
)

// Show is the wanted-state contract the search pipeline consumes. The
// surrounding library owns show metadata and decides what it still needs.
type Show interface {
	Name() string
	IsAnime() bool
	IsAirByDate() bool
	WantEpisode(season, episode int, quality Quality, manual bool) bool
}

// AbsoluteMapper is implemented by shows that can translate an absolute
// episode number (common for anime fansub releases) into season/episode.
type AbsoluteMapper interface {
	SceneEpisode(absolute int) (season, episode int, ok bool)
}

// AirDateMapper is implemented by air-by-date shows that know which
// season/episode aired on a given day.
type AirDateMapper interface {
	EpisodeOnAirDate(airDate time.Time) (season, episode int, ok bool)
}

// Episode references a single episode of a show.
type Episode struct {
	Show           Show
	Season         int
	Number         int
	AbsoluteNumber int
	AirDate        time.Time
}

// PrettyName renders the episode for logs, e.g. "Show - S01E02".
func (e Episode) PrettyName() string {
	name := ""
	if e.Show != nil {
		name = e.Show.Name()
	}
	if e.Show != nil && e.Show.IsAirByDate() && !e.AirDate.IsZero() {
		return fmt.Sprintf("%s - %s", name, e.AirDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s - S%02dE%02d", name, e.Season, e.Number)
}

// ClassifiedRelease is a release title resolved into its structured parts.
// An empty Episodes slice denotes a whole-season release.
type ClassifiedRelease struct {
	Title        string
	URL          string
	Season       int
	Episodes     []int
	Quality      Quality
	ReleaseGroup string
	IsProper     bool
	AirDate      time.Time
}

// IsSeasonPack reports whether the release carries no specific episode.
func (r ClassifiedRelease) IsSeasonPack() bool {
	return len(r.Episodes) == 0
}

// HasEpisode reports whether number is one of the release's episodes.
func (r ClassifiedRelease) HasEpisode(number int) bool {
	for _, n := range r.Episodes {
		if n == number {
			return true
		}
	}
	return false
}

// Classifier turns a release title into a ClassifiedRelease for a show.
type Classifier interface {
	Classify(show Show, title string) (ClassifiedRelease, error)
}

// QueryGenerator produces the search terms sent to an indexer.
type QueryGenerator interface {
	SeasonQueries(show Show, season int) []string
	EpisodeQueries(ep Episode) []string
}
