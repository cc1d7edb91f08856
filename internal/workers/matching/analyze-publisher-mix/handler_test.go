// internal/workers/matching/analyze-publisher-mix/handler_test.go
package analyzepublishermix

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/matching"
	"resonate-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), matching.NewEngine(matching.DefaultConfig()), logger.NewTestLogger(t))
}

func missionTarget() models.TargetAudience {
	return models.TargetAudience{
		Market:      "sf",
		Geographic:  &models.GeographicTarget{Neighborhoods: []string{"mission", "excelsior"}},
		Demographic: &models.DemographicTarget{Languages: []string{"spanish"}},
	}
}

func candidates() []models.MatchPublisherData {
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
		{
			ID:            "c",
			Name:          "Mission Local",
			Neighborhoods: []string{"mission"},
			Languages:     []string{"spanish", "english"},
			Reach:         9000,
			Score:         70,
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Analysis(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		SelectedIDs: []string{"a", "b"},
		Candidates:  candidates(),
		Target:      missionTarget(),
	})
	require.NoError(t, err)

	assert.Nil(t, output.AddValue)
	assert.Equal(t, 100, output.Analysis.GeographicCoverage)
	assert.Equal(t, 100, output.Analysis.LanguageCoverage)
	assert.Equal(t, int64(25000), output.Analysis.TotalReach)
	assert.Equal(t, models.CostRange{Low: 60000, High: 100000}, output.Analysis.TotalCost)
	require.Len(t, output.Analysis.Contributions, 2)
	assert.Equal(t, []string{"mission"}, output.Analysis.Contributions[0].UniqueNeighborhoods)
}

func TestHandler_Execute_AddValue(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name          string
		selected      []string
		candidateID   string
		wantRedundant bool
		wantNewHoods  []string
		wantGeoAfter  int
	}{
		{
			name:          "fills neighborhood gap",
			selected:      []string{"a"},
			candidateID:   "b",
			wantRedundant: false,
			wantNewHoods:  []string{"excelsior"},
			wantGeoAfter:  100,
		},
		{
			name:          "duplicates current coverage",
			selected:      []string{"a"},
			candidateID:   "c",
			wantRedundant: true,
			wantNewHoods:  []string{},
			wantGeoAfter:  50,
		},
		{
			name:          "candidate already in selection is evaluated against the rest",
			selected:      []string{"a", "b"},
			candidateID:   "b",
			wantRedundant: false,
			wantNewHoods:  []string{"excelsior"},
			wantGeoAfter:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := h.Execute(context.Background(), &Input{
				SelectedIDs: tt.selected,
				Candidates:  candidates(),
				Target:      missionTarget(),
				CandidateID: tt.candidateID,
			})
			require.NoError(t, err)
			require.NotNil(t, output.AddValue)

			assert.Equal(t, tt.candidateID, output.AddValue.PublisherID)
			assert.Equal(t, tt.wantRedundant, output.AddValue.IsRedundant)
			assert.ElementsMatch(t, tt.wantNewHoods, output.AddValue.NewNeighborhoods)
			assert.Equal(t, tt.wantGeoAfter, output.AddValue.GeographicCoverageAfter)
		})
	}
}

func TestHandler_Execute_EmptySelection(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		Candidates: candidates(),
		Target:     missionTarget(),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, output.Analysis.GeographicCoverage)
	assert.ElementsMatch(t, []string{"mission", "excelsior"}, output.Analysis.NeighborhoodGaps)
	assert.Empty(t, output.Analysis.Contributions)
}

func TestInput_Unmarshal(t *testing.T) {
	raw := `{
		"selectedIds": ["a"],
		"candidateId": "b",
		"target": {"geographic": {"neighborhoods": ["mission"]}},
		"candidates": [{"id": "a", "name": "A", "neighborhoods": ["mission"], "languages": [], "reach": 10, "score": 50}]
	}`

	var input Input
	require.NoError(t, json.Unmarshal([]byte(raw), &input))
	assert.Equal(t, []string{"a"}, input.SelectedIDs)
	assert.Equal(t, "b", input.CandidateID)
	assert.Equal(t, []string{"mission"}, input.Target.Neighborhoods())
	require.Len(t, input.Candidates, 1)
	assert.Nil(t, input.Candidates[0].EstimatedCost)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_UnknownCandidate(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		SelectedIDs: []string{"a"},
		Candidates:  candidates(),
		Target:      missionTarget(),
		CandidateID: "zzz",
	})
	assert.Nil(t, output)
	require.Error(t, err)
	assert.ErrorContains(t, err, "INPUT_VALIDATION_FAILED")

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Contains(t, stdErr.Details, ErrUnknownCandidate.Error())
	assert.False(t, stdErr.Retryable)
}
