// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"resonate-workers/internal/models"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingParam     = errors.New("missing required parameter")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Indexed keyword fields of a publisher document.
const (
	FieldNeighborhoods = "neighborhoods"
	FieldLanguages     = "languages"
	FieldEthnicities   = "ethnicities"
	FieldStatus        = "status"
	FieldMarket        = "market"
)

// SearchQuery is one publisher index search.
type SearchQuery struct {
	Index         string
	QueryType     models.QueryType
	Neighborhoods []string
	Languages     []string
	Ethnicities   []string
	Market        string
	PublisherID   string
	From          int
	Size          int
}

// Normalize clamps pagination and lowercases the facet terms.
func (sq SearchQuery) Normalize() SearchQuery {
	if sq.From < 0 {
		sq.From = 0
	}
	if sq.Size < 1 {
		sq.Size = DefaultPageSize
	}
	if sq.Size > MaxPageSize {
		sq.Size = MaxPageSize
	}
	sq.Neighborhoods = terms(sq.Neighborhoods)
	sq.Languages = terms(sq.Languages)
	sq.Ethnicities = terms(sq.Ethnicities)
	sq.Market = strings.ToLower(strings.TrimSpace(sq.Market))
	sq.PublisherID = strings.TrimSpace(sq.PublisherID)
	return sq
}

// BuildQuery builds the search request for sq.
func BuildQuery(sq SearchQuery) (*esapi.SearchRequest, error) {
	if sq.Index == "" {
		return nil, ErrMissingIndex
	}
	sq = sq.Normalize()

	body, err := BuildBody(sq)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index: []string{sq.Index},
		Body:  bytes.NewReader(payload),
		From:  &sq.From,
		Size:  &sq.Size,
	}, nil
}

// BuildBody returns the query DSL for sq. Callers are expected to pass a
// normalized query.
func BuildBody(sq SearchQuery) (map[string]interface{}, error) {
	switch sq.QueryType {
	case models.QueryTypePublisherAudience:
		return buildAudienceQuery(sq)
	case models.QueryTypeSimilarPublishers:
		return buildSimilarPublishersQuery(sq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, sq.QueryType)
	}
}

// buildAudienceQuery scores active publishers by how many target facet terms
// their audience shares. At least one facet must match.
func buildAudienceQuery(sq SearchQuery) (map[string]interface{}, error) {
	should := []interface{}{}
	for _, facet := range []struct {
		field  string
		values []string
	}{
		{FieldNeighborhoods, sq.Neighborhoods},
		{FieldLanguages, sq.Languages},
		{FieldEthnicities, sq.Ethnicities},
	} {
		if len(facet.values) == 0 {
			continue
		}
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{facet.field: facet.values},
		})
	}
	if len(should) == 0 {
		return nil, fmt.Errorf("%w: target needs at least one neighborhood, language or ethnicity", ErrMissingParam)
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               baseFilters(sq),
			},
		},
	}, nil
}

// buildSimilarPublishersQuery finds publishers whose audience terms overlap
// with an indexed publisher. The source publisher is excluded from the hits.
func buildSimilarPublishersQuery(sq SearchQuery) (map[string]interface{}, error) {
	if sq.PublisherID == "" {
		return nil, fmt.Errorf("%w: publisherId", ErrMissingParam)
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields": []string{FieldNeighborhoods, FieldLanguages, FieldEthnicities},
							"like": []interface{}{
								map[string]interface{}{"_index": sq.Index, "_id": sq.PublisherID},
							},
							"min_term_freq":   1,
							"min_doc_freq":    1,
							"max_query_terms": 50,
						},
					},
				},
				"filter": baseFilters(sq),
			},
		},
	}, nil
}

func baseFilters(sq SearchQuery) []interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{FieldStatus: models.PublisherStatusActive},
		},
	}
	if sq.Market != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{FieldMarket: sq.Market},
		})
	}
	return filters
}

func terms(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
