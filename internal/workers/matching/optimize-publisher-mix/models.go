// internal/workers/matching/optimize-publisher-mix/models.go
package optimizepublishermix

import (
	"time"

	"resonate-workers/internal/models"
)

type Input struct {
	Candidates    []models.MatchPublisherData `json:"candidates"`
	Target        models.TargetAudience       `json:"target"`
	BudgetCents   int64                       `json:"budgetCents"`
	Prioritize    string                      `json:"prioritize,omitempty"`
	MinPublishers *int                        `json:"minPublishers,omitempty"`
	MaxPublishers *int                        `json:"maxPublishers,omitempty"`
	CampaignID    string                      `json:"campaignId,omitempty"`
}

type Output struct {
	RunID       string                      `json:"runId"`
	Recommended models.OptimizationResult   `json:"recommended"`
	Results     []models.OptimizationResult `json:"results"`
	Notified    bool                        `json:"notified"`
	DurationMs  int64                       `json:"durationMs"`
}

// MixRecommendation is the body of the notification sent for a campaign.
type MixRecommendation struct {
	RunID        string                    `json:"runId"`
	CampaignID   string                    `json:"campaignId"`
	Market       string                    `json:"market"`
	BudgetCents  int64                     `json:"budgetCents"`
	Result       models.OptimizationResult `json:"result"`
	Alternatives int                       `json:"alternatives"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
}
