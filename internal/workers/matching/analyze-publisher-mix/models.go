// internal/workers/matching/analyze-publisher-mix/models.go
package analyzepublishermix

import "resonate-workers/internal/models"

type Input struct {
	SelectedIDs []string                    `json:"selectedIds"`
	Candidates  []models.MatchPublisherData `json:"candidates"`
	Target      models.TargetAudience       `json:"target"`
	CandidateID string                      `json:"candidateId,omitempty"`
}

type Output struct {
	Analysis   models.MixAnalysis        `json:"analysis"`
	AddValue   *models.PublisherAddValue `json:"addValue,omitempty"`
	DurationMs int64                     `json:"durationMs"`
}
