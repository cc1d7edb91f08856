// internal/matching/mix_test.go
package matching

import (
	"testing"

	"resonate-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioCandidates() []models.MatchPublisherData {
	return []models.MatchPublisherData{
		{
			ID:            "a",
			Name:          "El Tecolote",
			Neighborhoods: []string{"mission"},
			Languages:     []string{"spanish"},
			Reach:         20000,
			Score:         80,
			EstimatedCost: &models.CostRange{Low: 40000, High: 60000},
		},
		{
			ID:            "b",
			Name:          "Excelsior Action",
			Neighborhoods: []string{"excelsior"},
			Reach:         5000,
			Score:         60,
			EstimatedCost: &models.CostRange{Low: 20000, High: 40000},
		},
	}
}

func TestAnalyzeMix_Scenario(t *testing.T) {
	engine := newTestEngine()

	analysis := engine.AnalyzeMix([]string{"a", "b"}, scenarioCandidates(), missionTarget())

	assert.Equal(t, 100, analysis.GeographicCoverage)
	assert.Equal(t, 100, analysis.LanguageCoverage)
	assert.Equal(t, 100, analysis.DemographicCoverage)
	assert.Empty(t, analysis.NeighborhoodGaps)
	assert.Empty(t, analysis.LanguageGaps)
	assert.Equal(t, []string{"excelsior", "mission"}, analysis.CoveredNeighborhoods)
	assert.Equal(t, int64(25000), analysis.TotalReach)
	assert.Equal(t, models.CostRange{Low: 60000, High: 100000}, analysis.TotalCost)

	require.Len(t, analysis.Contributions, 2)

	a := analysis.Contributions[0]
	assert.Equal(t, "a", a.PublisherID)
	assert.Equal(t, []string{"spanish"}, a.UniqueLanguages)
	assert.Equal(t, []string{"mission"}, a.UniqueNeighborhoods)
	assert.False(t, a.IsRedundant)
	assert.Equal(t, []string{
		"Fills your gap in Mission",
		"Fills your gap in Spanish language content",
	}, a.GapsFilled)

	b := analysis.Contributions[1]
	assert.Equal(t, "b", b.PublisherID)
	assert.Equal(t, []string{"excelsior"}, b.UniqueNeighborhoods)
	assert.Empty(t, b.UniqueLanguages)
	assert.False(t, b.IsRedundant)
	assert.Equal(t, []string{"Fills your gap in Excelsior"}, b.GapsFilled)
}

func TestAnalyzeMix_Gaps(t *testing.T) {
	engine := newTestEngine()

	analysis := engine.AnalyzeMix([]string{"b"}, scenarioCandidates(), missionTarget())

	assert.Equal(t, []string{"mission"}, analysis.NeighborhoodGaps)
	assert.Equal(t, []string{"spanish"}, analysis.LanguageGaps)
	assert.Equal(t, 50, analysis.GeographicCoverage)
	assert.Equal(t, 0, analysis.LanguageCoverage)
}

func TestAnalyzeMix_VacuousCoverage(t *testing.T) {
	engine := newTestEngine()
	target := models.TargetAudience{
		Demographic: &models.DemographicTarget{Languages: []string{"spanish"}},
	}

	selections := [][]string{nil, {"a"}, {"b"}, {"a", "b"}, {"unknown"}}
	for _, sel := range selections {
		analysis := engine.AnalyzeMix(sel, scenarioCandidates(), target)
		assert.Equal(t, 100, analysis.GeographicCoverage, "selection %v", sel)
		assert.Equal(t, 100, analysis.DemographicCoverage, "selection %v", sel)
	}
}

func TestAnalyzeMix_RedundantPublisher(t *testing.T) {
	engine := newTestEngine()
	candidates := append(scenarioCandidates(), models.MatchPublisherData{
		ID:            "c",
		Name:          "Mission Local",
		Neighborhoods: []string{"Mission"},
		Languages:     []string{"Spanish"},
		Reach:         8000,
		Score:         70,
	})

	analysis := engine.AnalyzeMix([]string{"a", "b", "c"}, candidates, missionTarget())

	require.Len(t, analysis.Contributions, 3)
	assert.True(t, analysis.Contributions[0].IsRedundant)
	assert.True(t, analysis.Contributions[2].IsRedundant)
	assert.Empty(t, analysis.Contributions[2].GapsFilled)
	assert.False(t, analysis.Contributions[1].IsRedundant)
	// c has no estimate and counts at the default cost.
	assert.Equal(t, models.CostRange{Low: 110000, High: 150000}, analysis.TotalCost)
}

func TestAnalyzeMix_EthnicityCoverage(t *testing.T) {
	engine := newTestEngine()
	target := models.TargetAudience{
		Cultural: &models.CulturalTarget{Ethnicities: []string{"latino", "filipino"}},
	}
	candidates := []models.MatchPublisherData{
		{ID: "a", Ethnicities: []string{"latino"}},
	}

	analysis := engine.AnalyzeMix([]string{"a"}, candidates, target)
	assert.Equal(t, 50, analysis.DemographicCoverage)
	assert.Equal(t, []string{"filipino"}, analysis.EthnicityGaps)
	require.Len(t, analysis.Contributions, 1)
	assert.Equal(t, []string{"latino"}, analysis.Contributions[0].UniqueEthnicities)
	assert.True(t, analysis.Contributions[0].IsRedundant)
	assert.Equal(t, []string{"Fills your gap in Latino communities"}, analysis.Contributions[0].GapsFilled)
}

func TestPublisherAddValue(t *testing.T) {
	engine := newTestEngine()
	candidates := append(scenarioCandidates(), models.MatchPublisherData{
		ID:            "c",
		Name:          "Mission Local",
		Neighborhoods: []string{"mission"},
		Languages:     []string{"spanish"},
	})

	t.Run("adds new neighborhood", func(t *testing.T) {
		value, ok := engine.PublisherAddValue("b", []string{"a"}, candidates, missionTarget())
		require.True(t, ok)
		assert.Equal(t, []string{"excelsior"}, value.NewNeighborhoods)
		assert.Empty(t, value.AlreadyCovered)
		assert.False(t, value.IsRedundant)
		assert.Equal(t, 100, value.GeographicCoverageAfter)
		assert.Equal(t, 100, value.LanguageCoverageAfter)
		assert.Equal(t, []string{"Fills your gap in Excelsior"}, value.GapsFilled)
	})

	t.Run("redundant when everything is covered", func(t *testing.T) {
		value, ok := engine.PublisherAddValue("c", []string{"a"}, candidates, missionTarget())
		require.True(t, ok)
		assert.True(t, value.IsRedundant)
		assert.Empty(t, value.GapsFilled)
		assert.Equal(t, []string{"mission", "spanish"}, value.AlreadyCovered)
		assert.Equal(t, 50, value.GeographicCoverageAfter)
	})

	t.Run("candidate already in selection is evaluated against the others", func(t *testing.T) {
		value, ok := engine.PublisherAddValue("a", []string{"a", "b"}, candidates, missionTarget())
		require.True(t, ok)
		assert.Equal(t, []string{"mission"}, value.NewNeighborhoods)
		assert.Equal(t, []string{"spanish"}, value.NewLanguages)
		assert.False(t, value.IsRedundant)
	})

	t.Run("empty selection", func(t *testing.T) {
		value, ok := engine.PublisherAddValue("a", nil, candidates, missionTarget())
		require.True(t, ok)
		assert.Equal(t, 50, value.GeographicCoverageAfter)
		assert.Equal(t, 100, value.LanguageCoverageAfter)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		_, ok := engine.PublisherAddValue("missing", []string{"a"}, candidates, missionTarget())
		assert.False(t, ok)
	})
}
