package tv

import (
	"fmt"
	"regexp"
	"strings"
)

var nonNameChars = regexp.MustCompile(`[^\w\s'&-]+`)

// SceneQueries is the default QueryGenerator. It emits the scene-style
// permutations indexers usually match on.
type SceneQueries struct{}

// SceneName strips punctuation indexers choke on and collapses whitespace.
func SceneName(name string) string {
	name = strings.ReplaceAll(name, "&", "and")
	name = nonNameChars.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}

// SeasonQueries returns the terms for a season search. A season below zero
// means the whole show.
func (SceneQueries) SeasonQueries(show Show, season int) []string {
	name := SceneName(show.Name())
	if season < 0 {
		return []string{name}
	}
	if show.IsAnime() {
		// fansub releases rarely carry season markers
		return []string{name}
	}
	return []string{
		fmt.Sprintf("%s S%02d", name, season),
		fmt.Sprintf("%s Season %d", name, season),
	}
}

// EpisodeQueries returns the terms for a single episode search.
func (SceneQueries) EpisodeQueries(ep Episode) []string {
	name := SceneName(ep.Show.Name())
	switch {
	case ep.Show.IsAirByDate() && !ep.AirDate.IsZero():
		return []string{
			fmt.Sprintf("%s %s", name, ep.AirDate.Format("2006.01.02")),
			fmt.Sprintf("%s %s", name, ep.AirDate.Format("2006 01 02")),
		}
	case ep.Show.IsAnime() && ep.AbsoluteNumber > 0:
		return []string{fmt.Sprintf("%s %02d", name, ep.AbsoluteNumber)}
	case ep.Show.IsAnime():
		return []string{
			fmt.Sprintf("%s %02d", name, ep.Number),
			fmt.Sprintf("%s S%02dE%02d", name, ep.Season, ep.Number),
		}
	}
	return []string{
		fmt.Sprintf("%s S%02dE%02d", name, ep.Season, ep.Number),
		fmt.Sprintf("%s %dx%02d", name, ep.Season, ep.Number),
	}
}

func fmtKey(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}
