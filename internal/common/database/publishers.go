// internal/common/database/publishers.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resonate-workers/internal/models"

	"github.com/lib/pq"
)

var ErrPublisherNotFound = errors.New("publisher not found")

const publisherColumns = `
	SELECT p.id, p.name, p.market, p.status, p.vendor_status, p.verification_level,
	       COALESCE(a.audience, '{}'::jsonb)
	FROM publishers p
	LEFT JOIN publisher_audiences a ON a.publisher_id = p.id`

const platformsQuery = `
	SELECT publisher_id, platform, follower_count, engagement_rate, verified
	FROM publisher_platforms
	WHERE publisher_id = ANY($1)
	ORDER BY publisher_id, platform`

const rateCardsQuery = `
	SELECT publisher_id, deliverable_type, platform, price_cents
	FROM publisher_rate_cards
	WHERE publisher_id = ANY($1)
	ORDER BY publisher_id, price_cents`

// PublisherStore loads publisher profiles from PostgreSQL. Audience facets live in a
// JSONB column shaped like models.AudienceProfile; platforms and rate cards are
// child tables keyed by publisher_id.
type PublisherStore struct {
	db          *sql.DB
	maxPoolSize int
}

func NewPublisherStore(db *sql.DB, maxPoolSize int) *PublisherStore {
	if maxPoolSize <= 0 {
		maxPoolSize = 500
	}
	return &PublisherStore{db: db, maxPoolSize: maxPoolSize}
}

// ListActive returns active publishers in market, restricted to ids when non-empty,
// ordered by id.
func (s *PublisherStore) ListActive(ctx context.Context, market string, ids []string) ([]models.PublisherProfile, error) {
	var (
		where []string
		args  []interface{}
	)
	where = append(where, "p.status = 'active'")
	if market != "" {
		args = append(args, market)
		where = append(where, fmt.Sprintf("p.market = $%d", len(args)))
	}
	if len(ids) > 0 {
		args = append(args, pq.Array(ids))
		where = append(where, fmt.Sprintf("p.id = ANY($%d)", len(args)))
	}
	args = append(args, s.maxPoolSize)

	query := publisherColumns +
		"\n\tWHERE " + strings.Join(where, " AND ") +
		fmt.Sprintf("\n\tORDER BY p.id\n\tLIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publishers: %w", err)
	}
	defer rows.Close()

	var publishers []models.PublisherProfile
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publishers: %w", err)
	}

	if err := s.attachChildren(ctx, publishers); err != nil {
		return nil, err
	}
	return publishers, nil
}

// Get returns a single publisher regardless of status.
func (s *PublisherStore) Get(ctx context.Context, id string) (*models.PublisherProfile, error) {
	row := s.db.QueryRowContext(ctx, publisherColumns+"\n\tWHERE p.id = $1", id)
	p, err := scanPublisher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPublisherNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	publishers := []models.PublisherProfile{p}
	if err := s.attachChildren(ctx, publishers); err != nil {
		return nil, err
	}
	return &publishers[0], nil
}

// RateCards returns rate card items grouped by publisher id.
func (s *PublisherStore) RateCards(ctx context.Context, ids []string) (map[string][]models.RateCardItem, error) {
	rows, err := s.db.QueryContext(ctx, rateCardsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query rate cards: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.RateCardItem)
	for rows.Next() {
		var publisherID string
		var item models.RateCardItem
		if err := rows.Scan(&publisherID, &item.DeliverableType, &item.Platform, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan rate card: %w", err)
		}
		out[publisherID] = append(out[publisherID], item)
	}
	return out, rows.Err()
}

func (s *PublisherStore) platforms(ctx context.Context, ids []string) (map[string][]models.PlatformPresence, error) {
	rows, err := s.db.QueryContext(ctx, platformsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query platforms: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.PlatformPresence)
	for rows.Next() {
		var publisherID string
		var pl models.PlatformPresence
		var engagement sql.NullFloat64
		if err := rows.Scan(&publisherID, &pl.Platform, &pl.FollowerCount, &engagement, &pl.Verified); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		if engagement.Valid {
			rate := engagement.Float64
			pl.EngagementRate = &rate
		}
		out[publisherID] = append(out[publisherID], pl)
	}
	return out, rows.Err()
}

func (s *PublisherStore) attachChildren(ctx context.Context, publishers []models.PublisherProfile) error {
	if len(publishers) == 0 {
		return nil
	}
	ids := make([]string, len(publishers))
	for i, p := range publishers {
		ids[i] = p.ID
	}

	platforms, err := s.platforms(ctx, ids)
	if err != nil {
		return err
	}
	rateCards, err := s.RateCards(ctx, ids)
	if err != nil {
		return err
	}

	for i := range publishers {
		publishers[i].Platforms = platforms[publishers[i].ID]
		publishers[i].RateCard = rateCards[publishers[i].ID]
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPublisher(row rowScanner) (models.PublisherProfile, error) {
	var (
		p            models.PublisherProfile
		vendor       sql.NullString
		verification sql.NullString
		audience     []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Market, &p.Status, &vendor, &verification, &audience); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan publisher: %w", err)
	}
	p.VendorStatus = vendor.String
	p.VerificationLevel = verification.String

	if len(audience) > 0 {
		if err := json.Unmarshal(audience, &p.Audience); err != nil {
			return p, fmt.Errorf("decode audience for %s: %w", p.ID, err)
		}
	}
	return p, nil
}
