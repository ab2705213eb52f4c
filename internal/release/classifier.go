package release

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moistari/rls"

	"snatcher/internal/tv"
)

var (
	reEpisodeRange = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,2})[ ._]?e(\d{1,3})[ ._]?-[ ._]?e?(\d{1,3})(?:[^0-9a-z]|$)`)
	reEpisodeMulti = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,2})((?:[ ._-]?e\d{1,3})+)(?:[^0-9]|$)`)
	reEpisodeNum   = regexp.MustCompile(`(?i)e(\d{1,3})`)
	reCrossEpisode = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(\d{2,3})(?:[^0-9]|$)`)
	reSeasonOnly   = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:s|season[ ._]?)(\d{1,2})(?:[^0-9a-z]|$)`)
	reAirDate      = regexp.MustCompile(`(?:^|[^0-9])(\d{4})[ ._-](\d{2})[ ._-](\d{2})(?:[^0-9]|$)`)
	reAnime        = regexp.MustCompile(`(?i)^\s*(?:\[([^\]]*)\]\s*)?(.*?)[ _]+-[ _]+(\d{1,4})(?:v(\d))?(?:[ _]*-[ _]*(\d{1,4})(?:v\d)?)?(?:[ _.\[(]|$)`)
	reSceneGroup   = regexp.MustCompile(`-([A-Za-z0-9]+)(?:\.[a-z0-9]{2,4})?$`)
	reResolution   = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(2160p|4k|uhd|1080[pi]|720p|576p|480p)(?:[^a-z0-9]|$)`)
	reProperTag    = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(proper|repack|rerip)(?:[^a-z0-9]|$)`)
	reVersionTag   = regexp.MustCompile(`(?i)(?:^|[^a-z]|\d)v([2-9])(?:[^a-z0-9]|$)`)
	reNonWord      = regexp.MustCompile(`[^\w\s]`)
	reTokenSplit   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Classifier is the default tv.Classifier. Scene episode markers are read
// with regular expressions; group, resolution and source come from rls.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses title for show. It fails with tv.ErrUnclassifiable when
// the title does not name the show or carries no season information.
func (c *Classifier) Classify(show tv.Show, title string) (tv.ClassifiedRelease, error) {
	rel := tv.ClassifiedRelease{Title: title}
	if strings.TrimSpace(title) == "" {
		return rel, fmt.Errorf("%w: empty title", tv.ErrUnclassifiable)
	}
	if !MatchesShow(show.Name(), title) {
		return rel, fmt.Errorf("%w: %q is not a release of %s", tv.ErrUnclassifiable, title, show.Name())
	}

	parsed := rls.ParseString(title)
	rel.Quality = qualityOf(title, parsed)
	rel.IsProper = IsProperTitle(title)
	rel.ReleaseGroup = groupOf(title, parsed)

	if show.IsAirByDate() {
		if m := reAirDate.FindStringSubmatch(title); m != nil {
			airDate, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
			if err == nil {
				rel.AirDate = airDate
				rel.Season = airDate.Year()
				if mapper, ok := show.(tv.AirDateMapper); ok {
					if season, episode, found := mapper.EpisodeOnAirDate(airDate); found {
						rel.Season = season
						rel.Episodes = []int{episode}
					}
				}
				return rel, nil
			}
		}
	}

	if m := reEpisodeRange.FindStringSubmatch(title); m != nil {
		first, last := atoi(m[2]), atoi(m[3])
		if last >= first {
			rel.Season = atoi(m[1])
			for n := first; n <= last; n++ {
				rel.Episodes = append(rel.Episodes, n)
			}
			return rel, nil
		}
	}

	if m := reEpisodeMulti.FindStringSubmatch(title); m != nil {
		rel.Season = atoi(m[1])
		for _, ep := range reEpisodeNum.FindAllStringSubmatch(m[2], -1) {
			rel.Episodes = appendUnique(rel.Episodes, atoi(ep[1]))
		}
		return rel, nil
	}

	if m := reCrossEpisode.FindStringSubmatch(title); m != nil {
		rel.Season = atoi(m[1])
		rel.Episodes = []int{atoi(m[2])}
		return rel, nil
	}

	if show.IsAnime() {
		if m := reAnime.FindStringSubmatch(title); m != nil {
			return classifyAbsolute(show, rel, m)
		}
	}

	if m := reSeasonOnly.FindStringSubmatch(title); m != nil {
		rel.Season = atoi(m[1])
		return rel, nil
	}

	if parsed.Series > 0 {
		rel.Season = parsed.Series
		if parsed.Episode > 0 {
			rel.Episodes = []int{parsed.Episode}
		}
		return rel, nil
	}

	return rel, fmt.Errorf("%w: no season or episode in %q", tv.ErrUnclassifiable, title)
}

func classifyAbsolute(show tv.Show, rel tv.ClassifiedRelease, m []string) (tv.ClassifiedRelease, error) {
	first := atoi(m[3])
	last := first
	if m[5] != "" {
		last = atoi(m[5])
	}
	if last < first {
		return rel, fmt.Errorf("%w: bad episode range in %q", tv.ErrUnclassifiable, rel.Title)
	}
	if m[4] != "" && atoi(m[4]) > 1 {
		rel.IsProper = true
	}
	if m[1] != "" {
		rel.ReleaseGroup = m[1]
	}

	mapper, canMap := show.(tv.AbsoluteMapper)
	for abs := first; abs <= last; abs++ {
		season, episode := 1, abs
		if canMap {
			s, e, ok := mapper.SceneEpisode(abs)
			if !ok {
				return rel, fmt.Errorf("%w: absolute episode %d of %s is unknown", tv.ErrUnclassifiable, abs, show.Name())
			}
			season, episode = s, e
		}
		if abs == first {
			rel.Season = season
		} else if season != rel.Season {
			// a pack spanning two seasons has no single bucket
			return rel, fmt.Errorf("%w: %q spans several seasons", tv.ErrUnclassifiable, rel.Title)
		}
		rel.Episodes = appendUnique(rel.Episodes, episode)
	}
	return rel, nil
}

// IsProperTitle reports whether a title marks a proper, repack or a
// re-versioned (v2 and up) release.
func IsProperTitle(title string) bool {
	return reProperTag.MatchString(title) || reVersionTag.MatchString(title)
}

// MatchesShow reports whether every meaningful word of the show name occurs
// in the release title.
func MatchesShow(showName, title string) bool {
	words := meaningfulWords(showName)
	if len(words) == 0 {
		return true
	}
	normalized := strings.ToLower(reNonWord.ReplaceAllString(strings.ReplaceAll(title, "'", ""), " "))
	for _, word := range words {
		if !strings.Contains(normalized, word) {
			return false
		}
	}
	return true
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
}

func meaningfulWords(title string) []string {
	clean := reNonWord.ReplaceAllString(strings.ReplaceAll(title, "'", ""), " ")
	var words []string
	for _, word := range strings.Fields(strings.ToLower(clean)) {
		if !stopWords[word] {
			words = append(words, word)
		}
	}
	return words
}

func groupOf(title string, parsed rls.Release) string {
	if parsed.Group != "" {
		return parsed.Group
	}
	if m := reSceneGroup.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
		return m[1]
	}
	return ""
}

func qualityOf(title string, parsed rls.Release) tv.Quality {
	resolution := strings.ToLower(parsed.Resolution)
	if resolution == "" {
		if m := reResolution.FindStringSubmatch(title); m != nil {
			resolution = strings.ToLower(m[1])
		}
	}
	source := sourceClass(parsed.Source)
	if source == "" {
		source = sourceClass(title)
	}

	switch resolution {
	case "2160p", "4k", "uhd":
		return tv.QualityUHD
	case "1080p", "1080i":
		switch source {
		case "bluray":
			return tv.QualityFullHDBluRay
		case "web":
			return tv.QualityFullHDWebDL
		}
		return tv.QualityFullHDTV
	case "720p":
		switch source {
		case "bluray":
			return tv.QualityHDBluRay
		case "web":
			return tv.QualityHDWebDL
		}
		return tv.QualityHDTV
	}

	switch source {
	case "dvd", "bluray":
		return tv.QualitySDDVD
	case "tv", "web":
		return tv.QualitySDTV
	}
	if resolution == "480p" || resolution == "576p" {
		return tv.QualitySDTV
	}
	return tv.QualityUnknown
}

var sourceTokens = map[string]string{
	"bluray": "bluray", "blu": "bluray", "bdrip": "bluray", "brrip": "bluray", "bdremux": "bluray", "bd": "bluray",
	"webdl": "web", "webrip": "web", "web": "web", "amzn": "web", "nf": "web",
	"dvdrip": "dvd", "dvd": "dvd",
	"hdtv": "tv", "pdtv": "tv", "dsr": "tv", "tvrip": "tv", "sdtv": "tv",
}

// sourceClass collapses the many source spellings into bluray, web, dvd or tv.
func sourceClass(s string) string {
	for _, token := range reTokenSplit.Split(strings.ToLower(s), -1) {
		if class, ok := sourceTokens[token]; ok {
			return class
		}
	}
	return ""
}

func appendUnique(list []int, n int) []int {
	for _, v := range list {
		if v == n {
			return list
		}
	}
	return append(list, n)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
