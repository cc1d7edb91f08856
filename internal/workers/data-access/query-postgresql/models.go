// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "resonate-workers/internal/models"

type Input struct {
	QueryType    string   `json:"queryType"`
	PublisherID  string   `json:"publisherId,omitempty"`
	PublisherIDs []string `json:"publisherIds,omitempty"`
	Market       string   `json:"market,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypePublisherProfile  = models.QueryTypePublisherProfile
	QueryTypePublisherProfiles = models.QueryTypePublisherProfiles
	QueryTypePublisherRateCard = models.QueryTypePublisherRateCard
)
