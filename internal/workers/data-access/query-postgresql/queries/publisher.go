// internal/workers/data-access/query-postgresql/queries/publisher.go
package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resonate-workers/internal/common/database"
	"resonate-workers/internal/models"
)

// Store is the publisher store surface the queries read from.
type Store interface {
	Get(ctx context.Context, id string) (*models.PublisherProfile, error)
	ListActive(ctx context.Context, market string, ids []string) ([]models.PublisherProfile, error)
	RateCards(ctx context.Context, ids []string) (map[string][]models.RateCardItem, error)
}

// PublisherProfile loads one publisher by id regardless of status. A missing
// publisher yields nil data and a zero row count.
func PublisherProfile(ctx context.Context, store Store, params Params) (interface{}, int, error) {
	id := strings.TrimSpace(params.PublisherID)
	if id == "" {
		return nil, 0, fmt.Errorf("%w: publisherId", ErrMissingParam)
	}

	p, err := store.Get(ctx, id)
	if errors.Is(err, database.ErrPublisherNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return p, 1, nil
}

// PublisherProfiles lists active publishers by market and/or id set.
func PublisherProfiles(ctx context.Context, store Store, params Params) (interface{}, int, error) {
	market := strings.TrimSpace(params.Market)
	if market == "" && len(params.PublisherIDs) == 0 {
		return nil, 0, fmt.Errorf("%w: market or publisherIds", ErrMissingParam)
	}

	publishers, err := store.ListActive(ctx, market, params.PublisherIDs)
	if err != nil {
		return nil, 0, err
	}
	if publishers == nil {
		publishers = []models.PublisherProfile{}
	}
	return publishers, len(publishers), nil
}

// PublisherRateCard returns rate card items grouped by publisher id. The row count is
// the number of items across all publishers.
func PublisherRateCard(ctx context.Context, store Store, params Params) (interface{}, int, error) {
	ids := params.PublisherIDs
	if len(ids) == 0 && strings.TrimSpace(params.PublisherID) != "" {
		ids = []string{strings.TrimSpace(params.PublisherID)}
	}
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("%w: publisherId or publisherIds", ErrMissingParam)
	}

	cards, err := store.RateCards(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	count := 0
	for _, items := range cards {
		count += len(items)
	}
	return cards, count, nil
}
