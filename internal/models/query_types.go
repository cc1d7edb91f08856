// internal/models/query_types.go
package models

type QueryType string

// PostgreSQL query types.
const (
	QueryTypePublisherProfile  QueryType = "publisher_profile"
	QueryTypePublisherProfiles QueryType = "publisher_profiles"
	QueryTypePublisherRateCard QueryType = "publisher_rate_card"
)

// Elasticsearch query types.
const (
	QueryTypePublisherAudience QueryType = "publisher_audience"
	QueryTypeSimilarPublishers QueryType = "similar_publishers"
)
