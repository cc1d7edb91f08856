// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"errors"
	"fmt"

	"resonate-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Params carries the lookup keys of a query. Unused keys are ignored.
type Params struct {
	PublisherID  string
	PublisherIDs []string
	Market       string
}

// QueryFunc returns the query data and its row count.
type QueryFunc func(ctx context.Context, store Store, params Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypePublisherProfile:  PublisherProfile,
	models.QueryTypePublisherProfiles: PublisherProfiles,
	models.QueryTypePublisherRateCard: PublisherRateCard,
}

func Execute(ctx context.Context, store Store, queryType models.QueryType, params Params) (interface{}, int, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, store, params)
}
