// internal/matching/optimizer.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"resonate-workers/internal/models"
)

type OptimizeOptions struct {
	BudgetCents   int64
	Prioritize    models.Priority
	MinPublishers int
	MaxPublishers int
}

// DefaultOptimizeOptions returns coverage priority and the configured publisher bounds.
func (e *Engine) DefaultOptimizeOptions(budgetCents int64) OptimizeOptions {
	return OptimizeOptions{
		BudgetCents:   budgetCents,
		Prioritize:    models.PriorityCoverage,
		MinPublishers: e.cfg.MinPublishers,
		MaxPublishers: e.cfg.MaxPublishers,
	}
}

type rankedCandidate struct {
	data    models.MatchPublisherData
	costMid int64
	value   float64
	density float64
}

// CostMid is the midpoint of the candidate's estimated cost, or the configured default
// when the candidate has no estimate.
func (e *Engine) CostMid(c models.MatchPublisherData) int64 {
	if c.EstimatedCost != nil {
		if mid := c.EstimatedCost.Mid(); mid > 0 {
			return mid
		}
	}
	return e.cfg.Estimates.DefaultCostCents
}

// CostEstimate is the candidate's estimated cost range, or a point range at the
// default cost when the candidate has no estimate.
func (e *Engine) CostEstimate(c models.MatchPublisherData) models.CostRange {
	if c.EstimatedCost != nil && c.EstimatedCost.High > 0 {
		return *c.EstimatedCost
	}
	mid := e.CostMid(c)
	return models.CostRange{Low: mid, High: mid}
}

// OptimizePublisherMix greedily selects publishers by value per cost until the budget is
// spent. It approximates the best selection and does not search combinations.
func (e *Engine) OptimizePublisherMix(candidates []models.MatchPublisherData, target models.TargetAudience, opts OptimizeOptions) models.OptimizationResult {
	market := LookupMarket(target.Market)

	if opts.BudgetCents <= 0 {
		return models.OptimizationResult{
			SelectedPublishers: []string{},
			Explanation:        []string{"Increase budget to select publishers for this campaign"},
		}
	}

	pool := uniqueCandidates(candidates)
	if len(pool) == 0 {
		return models.OptimizationResult{
			SelectedPublishers: []string{},
			Explanation: []string{
				fmt.Sprintf("No candidate publishers available. Broaden your target audience or add %s", market.AreaNounPlural),
			},
		}
	}

	maxPubs := opts.MaxPublishers
	if maxPubs <= 0 {
		maxPubs = e.cfg.MaxPublishers
	}
	minPubs := opts.MinPublishers
	if minPubs < 0 {
		minPubs = 0
	}
	if minPubs > maxPubs {
		minPubs = maxPubs
	}

	priority := opts.Prioritize
	if priority == "" {
		priority = models.PriorityCoverage
	}

	ranked := e.rank(pool, target, e.cfg.Blend(priority))

	selected := make([]models.MatchPublisherData, 0, maxPubs)
	var running int64
	for _, rc := range ranked {
		if len(selected) >= maxPubs {
			break
		}
		if len(selected) >= minPubs && running+rc.costMid > opts.BudgetCents {
			break
		}
		selected = append(selected, rc.data)
		running += rc.costMid
	}

	result, analysis := e.summarize(selected, pool, target)
	result.Explanation = e.explain(result, analysis, len(pool), opts.BudgetCents, running, cheapest(ranked), priority, market)
	return result
}

// rank orders candidates by blended value per cost, highest first, ties by id.
func (e *Engine) rank(pool []models.MatchPublisherData, target models.TargetAudience, blend PriorityBlend) []rankedCandidate {
	want := targetFacets(target)
	wanted := want.neighborhoods.Len() + want.languages.Len()

	ranked := make([]rankedCandidate, 0, len(pool))
	for _, c := range pool {
		own := candidateFacets(c)
		mid := e.CostMid(c)

		coverage := float64(e.cfg.NeutralScore)
		if wanted > 0 {
			hits := own.neighborhoods.Intersect(want.neighborhoods).Len() + own.languages.Intersect(want.languages).Len()
			coverage = 100 * float64(hits) / float64(wanted)
		}

		quality := float64(c.Score)

		efficiency := float64(e.cfg.NeutralScore)
		if mid > 0 {
			efficiency = math.Min(100, quality/(float64(mid)/e.cfg.Estimates.CostEfficiencyUnit)*10)
		}

		value := blend.Coverage*coverage + blend.Quality*quality + blend.CostEfficiency*efficiency
		density := value
		if mid > 0 {
			density = value / float64(mid)
		}
		ranked = append(ranked, rankedCandidate{data: c, costMid: mid, value: value, density: density})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].density != ranked[j].density {
			return ranked[i].density > ranked[j].density
		}
		return ranked[i].data.ID < ranked[j].data.ID
	})
	return ranked
}

// summarize computes the exact coverage, quality, cost and reach of a selection.
func (e *Engine) summarize(selected, pool []models.MatchPublisherData, target models.TargetAudience) (models.OptimizationResult, models.MixAnalysis) {
	ids := make([]string, 0, len(selected))
	var cost models.CostRange
	var reach int64
	scoreSum := 0
	for _, c := range selected {
		ids = append(ids, c.ID)
		reach += c.Reach
		scoreSum += c.Score
		est := e.CostEstimate(c)
		cost.Low += est.Low
		cost.High += est.High
	}

	analysis := e.AnalyzeMix(ids, pool, target)
	want := targetFacets(target)
	wanted := want.neighborhoods.Len() + want.languages.Len()
	coverage := 100
	if wanted > 0 {
		gaps := len(analysis.NeighborhoodGaps) + len(analysis.LanguageGaps)
		coverage = int(math.Round(100 * float64(wanted-gaps) / float64(wanted)))
	}

	quality := 0
	if len(selected) > 0 {
		quality = int(math.Round(float64(scoreSum) / float64(len(selected))))
	}

	return models.OptimizationResult{
		SelectedPublishers: ids,
		TotalCost:          cost,
		TotalReach:         reach,
		CoverageScore:      coverage,
		MatchQualityScore:  quality,
	}, analysis
}

func (e *Engine) explain(r models.OptimizationResult, analysis models.MixAnalysis, poolSize int, budget, spent, cheapest int64, priority models.Priority, market Market) []string {
	if len(r.SelectedPublishers) == 0 {
		return []string{
			fmt.Sprintf("No publishers fit within the %s budget. Increase budget to at least %s", formatDollars(budget), formatDollars(cheapest)),
		}
	}

	lines := []string{
		fmt.Sprintf("Selected %d of %d publishers for an estimated %s of your %s budget",
			len(r.SelectedPublishers), poolSize, formatDollars(spent), formatDollars(budget)),
		fmt.Sprintf("Covers %d%% of target %s and languages", r.CoverageScore, market.AreaNounPlural),
		fmt.Sprintf("Average match quality %d/100", r.MatchQualityScore),
	}

	switch priority {
	case models.PriorityQuality:
		lines = append(lines, "Prioritized publishers with the strongest audience match")
	case models.PriorityCost:
		lines = append(lines, "Prioritized publishers with the best match per dollar")
	default:
		lines = append(lines, fmt.Sprintf("Prioritized publishers that reach the most target %s and languages", market.AreaNounPlural))
	}

	if spent > budget {
		lines = append(lines, fmt.Sprintf("Minimum publisher count exceeds budget by %s", formatDollars(spent-budget)))
	}

	if gaps := append(append([]string(nil), analysis.NeighborhoodGaps...), analysis.LanguageGaps...); len(gaps) > 0 {
		lines = append(lines, "Still missing "+FormatList(gaps, e.cfg.ListLimit))
	}
	return lines
}

func cheapest(ranked []rankedCandidate) int64 {
	var low int64
	for i, rc := range ranked {
		if i == 0 || rc.costMid < low {
			low = rc.costMid
		}
	}
	return low
}

// uniqueCandidates drops repeated ids, keeping the first occurrence.
func uniqueCandidates(candidates []models.MatchPublisherData) []models.MatchPublisherData {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]models.MatchPublisherData, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// GenerateOptimizationAlternatives returns a recommended selection plus distinct
// coverage, quality and cost alternatives. When the budget covers every candidate a
// single all-inclusive result is returned.
func (e *Engine) GenerateOptimizationAlternatives(candidates []models.MatchPublisherData, target models.TargetAudience, budgetCents int64) []models.OptimizationResult {
	pool := uniqueCandidates(candidates)
	if budgetCents <= 0 || len(pool) == 0 {
		return []models.OptimizationResult{
			e.OptimizePublisherMix(pool, target, e.DefaultOptimizeOptions(budgetCents)),
		}
	}

	var total int64
	for _, c := range pool {
		total += e.CostMid(c)
	}
	if total <= budgetCents {
		market := LookupMarket(target.Market)
		r, _ := e.summarize(pool, pool, target)
		r.Label = models.LabelRecommended
		r.Explanation = []string{
			fmt.Sprintf("Your %s budget covers all %d publishers", formatDollars(budgetCents), len(pool)),
			fmt.Sprintf("Covers %d%% of target %s and languages", r.CoverageScore, market.AreaNounPlural),
			fmt.Sprintf("Average match quality %d/100", r.MatchQualityScore),
		}
		return []models.OptimizationResult{r}
	}

	runs := []struct {
		priority models.Priority
		label    string
	}{
		{models.PriorityCoverage, models.LabelMaximizeCoverage},
		{models.PriorityQuality, models.LabelBestMatchQuality},
		{models.PriorityCost, models.LabelBudgetFriendly},
	}

	seen := make(map[string]struct{}, len(runs))
	results := make([]models.OptimizationResult, 0, len(runs))
	for _, run := range runs {
		opts := e.DefaultOptimizeOptions(budgetCents)
		opts.Prioritize = run.priority
		r := e.OptimizePublisherMix(pool, target, opts)
		key := selectionKey(r.SelectedPublishers)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r.Label = run.label
		results = append(results, r)
	}

	if len(results) > 0 {
		results[0].Label = models.LabelRecommended
	}
	return results
}

// selectionKey identifies a selection independent of order.
func selectionKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
