// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "resonate-workers/internal/models"

type Input struct {
	QueryType   string                 `json:"queryType"`
	IndexName   string                 `json:"indexName,omitempty"`
	Target      *models.TargetAudience `json:"target,omitempty"`
	Market      string                 `json:"market,omitempty"`
	PublisherID string                 `json:"publisherId,omitempty"`
	Pagination  Pagination             `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
