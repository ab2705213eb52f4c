package core

import (
	"regexp"
	"sort"

	"snatcher/internal/providers"
	"snatcher/internal/utils"
)

// Selector ranks search results and picks the one to snatch.
type Selector struct {
	reject []*regexp.Regexp
	logger *utils.Logger
}

// NewSelector compiles the reject patterns case-insensitively. Invalid
// patterns are logged and skipped.
func NewSelector(rejectPatterns []string, logger *utils.Logger) *Selector {
	s := &Selector{logger: logger}
	for _, pattern := range rejectPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			logger.Error("Invalid reject pattern:", pattern, "Error:", err)
			continue
		}
		s.reject = append(s.reject, re)
	}
	return s
}

// Rank drops rejected results and orders the rest best first: higher
// quality, then propers, then the order they were found in.
func (s *Selector) Rank(results []*providers.SearchResult) []*providers.SearchResult {
	ranked := make([]*providers.SearchResult, 0, len(results))
	for _, r := range results {
		if s.rejected(r.Name) {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Quality != ranked[j].Quality {
			return ranked[i].Quality > ranked[j].Quality
		}
		return ranked[i].IsProper && !ranked[j].IsProper
	})
	return ranked
}

// Best returns the top ranked result, or nil when none survive.
func (s *Selector) Best(results []*providers.SearchResult) *providers.SearchResult {
	ranked := s.Rank(results)
	if len(ranked) == 0 {
		return nil
	}

	best := ranked[0]
	s.logger.Info("Best result selected:", best.Name, "Quality:", best.Quality, "Proper:", best.IsProper)
	for i := 1; i < len(ranked) && i < 3; i++ {
		s.logger.Debug("Runner-up:", ranked[i].Name, "Quality:", ranked[i].Quality)
	}
	return best
}

func (s *Selector) rejected(name string) bool {
	for _, re := range s.reject {
		if re.MatchString(name) {
			s.logger.Debug("Rejected by pattern", re.String()+":", name)
			return true
		}
	}
	return false
}
