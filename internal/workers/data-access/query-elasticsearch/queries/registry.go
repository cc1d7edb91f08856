// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// ErrTransport marks failures to reach the cluster at all.
var ErrTransport = errors.New("elasticsearch transport error")

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

// ResponseError is a non-2xx search response.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("search failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("search failed with status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

// IndexNotFound reports whether the response names a missing index.
func (e *ResponseError) IndexNotFound() bool {
	return e.Type == "index_not_found_exception" ||
		(e.Type == "" && e.StatusCode == http.StatusNotFound)
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                 `json:"_id"`
			Score  *float64               `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Execute runs sq against the cluster and flattens the hits into their
// source documents.
func Execute(ctx context.Context, esClient *elasticsearch.Client, sq SearchQuery) (*QueryResult, error) {
	req, err := BuildQuery(sq)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, decodeError(res.StatusCode, res.Body)
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &QueryResult{
		Data:      make([]map[string]interface{}, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		doc := hit.Source
		if doc == nil {
			doc = map[string]interface{}{}
		}
		if _, ok := doc["id"]; !ok {
			doc["id"] = hit.ID
		}
		if hit.Score != nil {
			doc["_score"] = *hit.Score
		}
		result.Data = append(result.Data, doc)
	}
	return result, nil
}

func decodeError(status int, body io.Reader) error {
	respErr := &ResponseError{StatusCode: status}
	var e errorResponse
	if err := json.NewDecoder(body).Decode(&e); err == nil {
		respErr.Type = e.Error.Type
		respErr.Reason = e.Error.Reason
	}
	return respErr
}
