// internal/matching/optimizer_test.go
package matching

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"resonate-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optimizerCandidates ranks b, a, c under every priority.
func optimizerCandidates() []models.MatchPublisherData {
	return append(scenarioCandidates(), models.MatchPublisherData{
		ID:            "c",
		Name:          "Citywide Weekly",
		Neighborhoods: []string{"sunset"},
		Reach:         40000,
		Score:         40,
		EstimatedCost: &models.CostRange{Low: 80000, High: 120000},
	})
}

func optimizeOpts(engine *Engine, budget int64) OptimizeOptions {
	return engine.DefaultOptimizeOptions(budget)
}

func explanationContains(result models.OptimizationResult, substr string) bool {
	for _, line := range result.Explanation {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// ==========================
// Degenerate Input Tests
// ==========================

func TestOptimizePublisherMix_ZeroBudget(t *testing.T) {
	engine := newTestEngine()

	for _, budget := range []int64{0, -100} {
		result := engine.OptimizePublisherMix(optimizerCandidates(), missionTarget(), optimizeOpts(engine, budget))
		assert.NotNil(t, result.SelectedPublishers)
		assert.Empty(t, result.SelectedPublishers)
		assert.True(t, explanationContains(result, "Increase budget"), "explanation: %v", result.Explanation)
	}
}

func TestOptimizePublisherMix_NoCandidates(t *testing.T) {
	engine := newTestEngine()

	result := engine.OptimizePublisherMix(nil, missionTarget(), optimizeOpts(engine, 100000))
	assert.Empty(t, result.SelectedPublishers)
	require.Len(t, result.Explanation, 1)
	assert.Contains(t, result.Explanation[0], "No candidate publishers available")
}

func TestCostMid(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, int64(50000), engine.CostMid(models.MatchPublisherData{}))
	assert.Equal(t, int64(50000), engine.CostMid(models.MatchPublisherData{EstimatedCost: &models.CostRange{}}))
	assert.Equal(t, int64(30000), engine.CostMid(models.MatchPublisherData{EstimatedCost: &models.CostRange{Low: 20000, High: 40000}}))
}

// ==========================
// Greedy Selection Tests
// ==========================

func TestOptimizePublisherMix_Greedy(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name             string
		budget           int64
		minPublishers    int
		maxPublishers    int
		expected         []string
		expectedCoverage int
		expectedQuality  int
	}{
		{
			name:             "budget fits two",
			budget:           80000,
			minPublishers:    1,
			maxPublishers:    10,
			expected:         []string{"b", "a"},
			expectedCoverage: 100,
			expectedQuality:  70,
		},
		{
			name:             "budget fits one",
			budget:           50000,
			minPublishers:    1,
			maxPublishers:    10,
			expected:         []string{"b"},
			expectedCoverage: 33,
			expectedQuality:  60,
		},
		{
			name:             "minimum admitted over budget",
			budget:           10000,
			minPublishers:    1,
			maxPublishers:    10,
			expected:         []string{"b"},
			expectedCoverage: 33,
			expectedQuality:  60,
		},
		{
			name:             "max publishers caps selection",
			budget:           1000000,
			minPublishers:    1,
			maxPublishers:    1,
			expected:         []string{"b"},
			expectedCoverage: 33,
			expectedQuality:  60,
		},
		{
			name:             "stops at first candidate that does not fit",
			budget:           150000,
			minPublishers:    1,
			maxPublishers:    10,
			expected:         []string{"b", "a"},
			expectedCoverage: 100,
			expectedQuality:  70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := optimizeOpts(engine, tt.budget)
			opts.MinPublishers = tt.minPublishers
			opts.MaxPublishers = tt.maxPublishers

			result := engine.OptimizePublisherMix(optimizerCandidates(), missionTarget(), opts)
			assert.Equal(t, tt.expected, result.SelectedPublishers)
			assert.Equal(t, tt.expectedCoverage, result.CoverageScore)
			assert.Equal(t, tt.expectedQuality, result.MatchQualityScore)
			assert.NotEmpty(t, result.Explanation)
		})
	}
}

func TestOptimizePublisherMix_Totals(t *testing.T) {
	engine := newTestEngine()
	candidates := append(optimizerCandidates(), models.MatchPublisherData{
		ID:            "d",
		Neighborhoods: []string{"mission"},
		Score:         90,
		Reach:         1000,
	})

	opts := optimizeOpts(engine, 130000)
	opts.Prioritize = models.PriorityQuality
	result := engine.OptimizePublisherMix(candidates, missionTarget(), opts)

	assert.ElementsMatch(t, []string{"a", "b", "d"}, result.SelectedPublishers)
	// d has no estimate and contributes the default cost to both ends
	assert.Equal(t, models.CostRange{Low: 110000, High: 150000}, result.TotalCost)
	assert.Equal(t, int64(26000), result.TotalReach)

	analysis := engine.AnalyzeMix(result.SelectedPublishers, candidates, missionTarget())
	assert.Equal(t, result.TotalCost, analysis.TotalCost)
	assert.Equal(t, result.TotalReach, analysis.TotalReach)
}

func TestCostEstimate(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, models.CostRange{Low: 40000, High: 60000},
		engine.CostEstimate(models.MatchPublisherData{EstimatedCost: &models.CostRange{Low: 40000, High: 60000}}))
	assert.Equal(t, models.CostRange{Low: 50000, High: 50000},
		engine.CostEstimate(models.MatchPublisherData{}))
	assert.Equal(t, models.CostRange{Low: 50000, High: 50000},
		engine.CostEstimate(models.MatchPublisherData{EstimatedCost: &models.CostRange{}}))
}

func TestOptimizePublisherMix_OverBudgetMinimumIsExplained(t *testing.T) {
	engine := newTestEngine()

	result := engine.OptimizePublisherMix(optimizerCandidates(), missionTarget(), optimizeOpts(engine, 10000))
	assert.True(t, explanationContains(result, "exceeds budget"), "explanation: %v", result.Explanation)
}

func TestOptimizePublisherMix_NothingFitsWithoutMinimum(t *testing.T) {
	engine := newTestEngine()

	opts := optimizeOpts(engine, 10000)
	opts.MinPublishers = 0
	result := engine.OptimizePublisherMix(optimizerCandidates(), missionTarget(), opts)

	assert.Empty(t, result.SelectedPublishers)
	assert.True(t, explanationContains(result, "Increase budget"), "explanation: %v", result.Explanation)
}

func TestOptimizePublisherMix_MarketAreaNoun(t *testing.T) {
	engine := newTestEngine()
	target := missionTarget()
	target.Market = "chicago"

	result := engine.OptimizePublisherMix(optimizerCandidates(), target, optimizeOpts(engine, 80000))
	assert.True(t, explanationContains(result, "community areas"), "explanation: %v", result.Explanation)

	target.Market = ""
	result = engine.OptimizePublisherMix(optimizerCandidates(), target, optimizeOpts(engine, 80000))
	assert.True(t, explanationContains(result, "target neighborhoods"), "explanation: %v", result.Explanation)
}

func TestOptimizePublisherMix_BudgetMonotonicity(t *testing.T) {
	engine := newTestEngine()
	rng := rand.New(rand.NewSource(42))
	hoods := []string{"mission", "excelsior", "bayview", "sunset", "richmond", "tenderloin"}
	langs := []string{"spanish", "cantonese", "tagalog", "vietnamese"}

	for trial := 0; trial < 40; trial++ {
		n := 4 + rng.Intn(9)
		candidates := make([]models.MatchPublisherData, 0, n)
		for i := 0; i < n; i++ {
			c := models.MatchPublisherData{
				ID:            fmt.Sprintf("p%02d", i),
				Neighborhoods: []string{hoods[rng.Intn(len(hoods))]},
				Languages:     []string{langs[rng.Intn(len(langs))]},
				Reach:         int64(rng.Intn(50000)),
				Score:         30 + rng.Intn(70),
			}
			if rng.Intn(4) > 0 {
				low := int64(5000 + rng.Intn(100000))
				c.EstimatedCost = &models.CostRange{Low: low, High: low + int64(rng.Intn(100000))}
			}
			candidates = append(candidates, c)
		}
		target := models.TargetAudience{
			Geographic:  &models.GeographicTarget{Neighborhoods: hoods[:1+rng.Intn(len(hoods))]},
			Demographic: &models.DemographicTarget{Languages: langs[:rng.Intn(len(langs))]},
		}

		for _, priority := range []models.Priority{models.PriorityCoverage, models.PriorityQuality, models.PriorityCost} {
			prev := 0
			for budget := int64(0); budget <= 1500000; budget += 25000 {
				opts := optimizeOpts(engine, budget)
				opts.Prioritize = priority
				got := len(engine.OptimizePublisherMix(candidates, target, opts).SelectedPublishers)
				require.GreaterOrEqual(t, got, prev, "trial %d priority %s budget %d", trial, priority, budget)
				prev = got
			}
		}
	}
}

// ==========================
// Alternatives Tests
// ==========================

func TestGenerateOptimizationAlternatives_FullBudget(t *testing.T) {
	engine := newTestEngine()

	// mids: a 50000, b 30000, c 100000
	results := engine.GenerateOptimizationAlternatives(optimizerCandidates(), missionTarget(), 180000)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"a", "b", "c"}, results[0].SelectedPublishers)
	assert.Equal(t, models.LabelRecommended, results[0].Label)
	assert.Equal(t, 100, results[0].CoverageScore)
}

func TestGenerateOptimizationAlternatives_Deduplicates(t *testing.T) {
	engine := newTestEngine()

	results := engine.GenerateOptimizationAlternatives(optimizerCandidates(), missionTarget(), 80000)
	require.Len(t, results, 1)
	assert.Equal(t, models.LabelRecommended, results[0].Label)
	assert.Equal(t, []string{"b", "a"}, results[0].SelectedPublishers)
}

func TestGenerateOptimizationAlternatives_DistinctLabels(t *testing.T) {
	engine := newTestEngine()
	target := models.TargetAudience{
		Geographic: &models.GeographicTarget{Neighborhoods: []string{"mission", "excelsior", "bayview", "sunset"}},
	}
	candidates := []models.MatchPublisherData{
		{ID: "wide", Neighborhoods: []string{"mission", "excelsior", "bayview", "sunset"}, Score: 35, EstimatedCost: &models.CostRange{Low: 60000, High: 60000}},
		{ID: "star", Neighborhoods: []string{"mission"}, Score: 98, EstimatedCost: &models.CostRange{Low: 60000, High: 60000}},
		{ID: "cheap", Score: 40, EstimatedCost: &models.CostRange{Low: 1000, High: 1000}},
	}

	results := engine.GenerateOptimizationAlternatives(candidates, target, 61000)
	require.NotEmpty(t, results)
	assert.Equal(t, models.LabelRecommended, results[0].Label)

	keys := map[string]bool{}
	labels := map[string]bool{}
	for _, r := range results {
		key := selectionKey(r.SelectedPublishers)
		assert.False(t, keys[key], "duplicate selection %s", key)
		keys[key] = true
		assert.False(t, labels[r.Label], "duplicate label %s", r.Label)
		labels[r.Label] = true
	}
}

func TestGenerateOptimizationAlternatives_Degenerate(t *testing.T) {
	engine := newTestEngine()

	results := engine.GenerateOptimizationAlternatives(optimizerCandidates(), missionTarget(), 0)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].SelectedPublishers)
	assert.True(t, explanationContains(results[0], "Increase budget"))

	results = engine.GenerateOptimizationAlternatives(nil, missionTarget(), 100000)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].SelectedPublishers)
}

func TestSelectionKey(t *testing.T) {
	assert.Equal(t, selectionKey([]string{"b", "a"}), selectionKey([]string{"a", "b"}))
	assert.NotEqual(t, selectionKey([]string{"a"}), selectionKey([]string{"a", "b"}))
}
