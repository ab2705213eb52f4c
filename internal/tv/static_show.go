package tv

import "time"

// StaticShow is a Show backed by a fixed quality policy. It is what the CLI
// builds from flags; a library-backed implementation tracks what is on disk.
type StaticShow struct {
	Title     string
	Anime     bool
	AirByDate bool
	// Qualities lists acceptable qualities; empty accepts any known quality.
	Qualities []Quality
	// Have maps an episode key (see EpisodeKey) to the quality already held.
	Have map[string]Quality
	// Aired maps an air date (2006-01-02) to the episode shown that day.
	Aired map[string]SeasonEpisode
}

// SeasonEpisode locates an episode within its show.
type SeasonEpisode struct {
	Season  int
	Episode int
}

func (s *StaticShow) Name() string      { return s.Title }
func (s *StaticShow) IsAnime() bool     { return s.Anime }
func (s *StaticShow) IsAirByDate() bool { return s.AirByDate }

// WantEpisode accepts a quality from the allowed list that beats what is
// already held. Manual searches also accept unknown quality.
func (s *StaticShow) WantEpisode(season, episode int, quality Quality, manual bool) bool {
	if quality == QualityUnknown && !manual {
		return false
	}
	if len(s.Qualities) > 0 && quality != QualityUnknown {
		allowed := false
		for _, q := range s.Qualities {
			if q == quality {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if held, ok := s.Have[EpisodeKey(season, episode)]; ok && held >= quality {
		return false
	}
	return true
}

// EpisodeOnAirDate resolves an air date through Aired.
func (s *StaticShow) EpisodeOnAirDate(airDate time.Time) (int, int, bool) {
	se, ok := s.Aired[airDate.Format("2006-01-02")]
	return se.Season, se.Episode, ok
}

// EpisodeKey is the lookup key used by StaticShow.Have.
func EpisodeKey(season, episode int) string {
	return fmtKey(season, episode)
}
