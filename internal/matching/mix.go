// internal/matching/mix.go
package matching

import (
	"math"

	"resonate-workers/internal/models"
)

// facets is the normalized view of one candidate or of a union of candidates.
type facets struct {
	neighborhoods Set
	languages     Set
	ethnicities   Set
}

func newFacets() facets {
	return facets{neighborhoods: Set{}, languages: Set{}, ethnicities: Set{}}
}

func candidateFacets(c models.MatchPublisherData) facets {
	return facets{
		neighborhoods: NewSet(c.Neighborhoods...),
		languages:     NewSet(c.Languages...),
		ethnicities:   NewSet(c.Ethnicities...),
	}
}

func targetFacets(t models.TargetAudience) facets {
	return facets{
		neighborhoods: NewSet(t.Neighborhoods()...),
		languages:     NewSet(t.Languages()...),
		ethnicities:   NewSet(t.Ethnicities()...),
	}
}

func (f facets) union(o facets) facets {
	return facets{
		neighborhoods: f.neighborhoods.Union(o.neighborhoods),
		languages:     f.languages.Union(o.languages),
		ethnicities:   f.ethnicities.Union(o.ethnicities),
	}
}

// novel returns the facets of f that are absent from covered but wanted by target.
func (f facets) novel(covered, target facets) facets {
	return facets{
		neighborhoods: f.neighborhoods.Difference(covered.neighborhoods).Intersect(target.neighborhoods),
		languages:     f.languages.Difference(covered.languages).Intersect(target.languages),
		ethnicities:   f.ethnicities.Difference(covered.ethnicities).Intersect(target.ethnicities),
	}
}

// coveragePercent is 100 when the target asks for nothing.
func coveragePercent(target, covered Set) int {
	if target.Len() == 0 {
		return 100
	}
	gaps := target.Difference(covered).Len()
	return int(math.Round(100 * float64(target.Len()-gaps) / float64(target.Len())))
}

// selectCandidates returns the candidates whose ids are selected, in candidate order,
// keeping the first record for a repeated id. Unknown ids are ignored.
func selectCandidates(ids []string, candidates []models.MatchPublisherData) []models.MatchPublisherData {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]models.MatchPublisherData, 0, len(ids))
	for _, c := range candidates {
		if _, ok := want[c.ID]; !ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AnalyzeMix reports the coverage, gaps and per-publisher contribution of a selection.
func (e *Engine) AnalyzeMix(selectedIDs []string, candidates []models.MatchPublisherData, target models.TargetAudience) models.MixAnalysis {
	selected := selectCandidates(selectedIDs, candidates)
	want := targetFacets(target)

	own := make([]facets, len(selected))
	covered := newFacets()
	var reach int64
	var cost models.CostRange
	for i, c := range selected {
		own[i] = candidateFacets(c)
		covered = covered.union(own[i])
		reach += c.Reach
		est := e.CostEstimate(c)
		cost.Low += est.Low
		cost.High += est.High
	}

	contributions := make([]models.PublisherContribution, 0, len(selected))
	for i, c := range selected {
		others := newFacets()
		for j := range selected {
			if j != i {
				others = others.union(own[j])
			}
		}
		unique := own[i].novel(others, want)
		// Redundancy counts neighborhoods and languages only; an ethnicity-only
		// publisher is redundant yet still lists the ethnicity gap it fills.
		contributions = append(contributions, models.PublisherContribution{
			PublisherID:         c.ID,
			PublisherName:       c.Name,
			UniqueNeighborhoods: unique.neighborhoods.Sorted(),
			UniqueLanguages:     unique.languages.Sorted(),
			UniqueEthnicities:   unique.ethnicities.Sorted(),
			IsRedundant:         unique.neighborhoods.Len() == 0 && unique.languages.Len() == 0,
			GapsFilled:          e.gapsFilled(unique),
		})
	}

	return models.MixAnalysis{
		CoveredNeighborhoods: covered.neighborhoods.Sorted(),
		NeighborhoodGaps:     want.neighborhoods.Difference(covered.neighborhoods).Sorted(),
		CoveredLanguages:     covered.languages.Sorted(),
		LanguageGaps:         want.languages.Difference(covered.languages).Sorted(),
		CoveredEthnicities:   covered.ethnicities.Sorted(),
		EthnicityGaps:        want.ethnicities.Difference(covered.ethnicities).Sorted(),
		GeographicCoverage:   coveragePercent(want.neighborhoods, covered.neighborhoods),
		LanguageCoverage:     coveragePercent(want.languages, covered.languages),
		DemographicCoverage:  coveragePercent(want.ethnicities, covered.ethnicities),
		TotalCost:            cost,
		TotalReach:           reach,
		Contributions:        contributions,
	}
}

// PublisherAddValue answers what adding one candidate to the current selection would
// contribute. It returns false when the candidate id is unknown.
func (e *Engine) PublisherAddValue(candidateID string, currentSelection []string, candidates []models.MatchPublisherData, target models.TargetAudience) (models.PublisherAddValue, bool) {
	var candidate *models.MatchPublisherData
	for i := range candidates {
		if candidates[i].ID == candidateID {
			candidate = &candidates[i]
			break
		}
	}
	if candidate == nil {
		return models.PublisherAddValue{}, false
	}

	current := make([]string, 0, len(currentSelection))
	for _, id := range currentSelection {
		if id != candidateID {
			current = append(current, id)
		}
	}

	want := targetFacets(target)
	covered := newFacets()
	for _, c := range selectCandidates(current, candidates) {
		covered = covered.union(candidateFacets(c))
	}

	own := candidateFacets(*candidate)
	fresh := own.novel(covered, want)

	already := Set{}
	for k := range own.neighborhoods.Intersect(covered.neighborhoods).Intersect(want.neighborhoods) {
		already[k] = struct{}{}
	}
	for k := range own.languages.Intersect(covered.languages).Intersect(want.languages) {
		already[k] = struct{}{}
	}
	for k := range own.ethnicities.Intersect(covered.ethnicities).Intersect(want.ethnicities) {
		already[k] = struct{}{}
	}

	after := covered.union(own)

	return models.PublisherAddValue{
		PublisherID:             candidate.ID,
		PublisherName:           candidate.Name,
		NewNeighborhoods:        fresh.neighborhoods.Sorted(),
		NewLanguages:            fresh.languages.Sorted(),
		NewEthnicities:          fresh.ethnicities.Sorted(),
		AlreadyCovered:          already.Sorted(),
		IsRedundant:             fresh.neighborhoods.Len() == 0 && fresh.languages.Len() == 0,
		GapsFilled:              e.gapsFilled(fresh),
		GeographicCoverageAfter: coveragePercent(want.neighborhoods, after.neighborhoods),
		LanguageCoverageAfter:   coveragePercent(want.languages, after.languages),
	}, true
}

func (e *Engine) gapsFilled(unique facets) []string {
	gaps := make([]string, 0, 3)
	if unique.neighborhoods.Len() > 0 {
		gaps = append(gaps, "Fills your gap in "+FormatList(unique.neighborhoods.Sorted(), e.cfg.ListLimit))
	}
	if unique.languages.Len() > 0 {
		gaps = append(gaps, "Fills your gap in "+FormatList(unique.languages.Sorted(), e.cfg.ListLimit)+" language content")
	}
	if unique.ethnicities.Len() > 0 {
		gaps = append(gaps, "Fills your gap in "+FormatList(unique.ethnicities.Sorted(), e.cfg.ListLimit)+" communities")
	}
	return gaps
}
