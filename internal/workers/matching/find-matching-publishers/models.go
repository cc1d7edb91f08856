// internal/workers/matching/find-matching-publishers/models.go
package findmatchingpublishers

import "resonate-workers/internal/models"

// Input carries either an inline publisher pool or a market (plus optional ids) to
// load the pool from the publisher store.
type Input struct {
	Target              models.TargetAudience     `json:"target"`
	Publishers          []models.PublisherProfile `json:"publishers,omitempty"`
	Market              string                    `json:"market,omitempty"`
	PublisherIDs        []string                  `json:"publisherIds,omitempty"`
	MinScore            *int                      `json:"minScore,omitempty"`
	MaxResults          *int                      `json:"maxResults,omitempty"`
	RequireVendorStatus bool                      `json:"requireVendorStatus,omitempty"`
}

type Output struct {
	Matches     []models.MatchResult        `json:"matches"`
	Candidates  []models.MatchPublisherData `json:"candidates"`
	Market      string                      `json:"market"`
	TotalScored int                         `json:"totalScored"`
	DurationMs  int64                       `json:"durationMs"`
}
