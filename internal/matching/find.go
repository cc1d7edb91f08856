// internal/matching/find.go
package matching

import (
	"sort"

	"resonate-workers/internal/models"
)

type FindOptions struct {
	MinScore            int
	MaxResults          int
	RequireVendorStatus bool
}

// DefaultFindOptions returns the configured minimum score and result limit.
func (e *Engine) DefaultFindOptions() FindOptions {
	return FindOptions{
		MinScore:   e.cfg.MinScore,
		MaxResults: e.cfg.MaxResults,
	}
}

// Eligible reports whether a publisher may be scored: it must be active and, when
// required, a registered vendor.
func Eligible(p models.PublisherProfile, opts FindOptions) bool {
	if !p.IsActive() {
		return false
	}
	if opts.RequireVendorStatus && !p.IsRegisteredVendor() {
		return false
	}
	return true
}

// FindMatchingPublishers scores every eligible publisher and returns the ranked matches.
func (e *Engine) FindMatchingPublishers(target models.TargetAudience, publishers []models.PublisherProfile, opts FindOptions) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(publishers))
	for _, p := range publishers {
		if !Eligible(p, opts) {
			continue
		}
		results = append(results, e.Score(target, p))
	}
	return e.RankMatches(results, opts)
}

// RankMatches drops results below MinScore, orders the rest by score descending with
// publisher id as tie-break, and truncates to MaxResults. The input slice is not modified.
func (e *Engine) RankMatches(results []models.MatchResult, opts FindOptions) []models.MatchResult {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}

	kept := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.OverallScore >= opts.MinScore {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].OverallScore != kept[j].OverallScore {
			return kept[i].OverallScore > kept[j].OverallScore
		}
		return kept[i].PublisherID < kept[j].PublisherID
	})

	if len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	return kept
}
