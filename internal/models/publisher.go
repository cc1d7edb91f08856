// internal/models/publisher.go
package models

const (
	PublisherStatusActive = "active"

	VendorStatusRegistered = "registered"

	VerificationVerified          = "verified"
	VerificationPartiallyVerified = "partially_verified"
)

type PublisherProfile struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Market            string             `json:"market,omitempty"`
	Status            string             `json:"status"`
	VendorStatus      string             `json:"vendorStatus,omitempty"`
	VerificationLevel string             `json:"verificationLevel,omitempty"`
	Audience          AudienceProfile    `json:"audience"`
	Platforms         []PlatformPresence `json:"platforms,omitempty"`
	RateCard          []RateCardItem     `json:"rateCard,omitempty"`
}

// AudienceProfile mirrors TargetAudience but describes who a publisher actually reaches.
type AudienceProfile struct {
	Geographic  *GeographicTarget  `json:"geographic,omitempty"`
	Demographic *DemographicTarget `json:"demographic,omitempty"`
	Economic    *EconomicTarget    `json:"economic,omitempty"`
	Cultural    *CulturalTarget    `json:"cultural,omitempty"`
}

type PlatformPresence struct {
	Platform       string   `json:"platform"`
	FollowerCount  int64    `json:"followerCount"`
	EngagementRate *float64 `json:"engagementRate,omitempty"`
	Verified       bool     `json:"verified"`
}

type RateCardItem struct {
	DeliverableType string `json:"deliverableType"`
	Platform        string `json:"platform"`
	PriceCents      int64  `json:"priceCents"`
}

// IsActive reports whether the publisher can be matched.
func (p PublisherProfile) IsActive() bool {
	return p.Status == PublisherStatusActive
}

// IsRegisteredVendor reports whether the publisher completed vendor registration.
func (p PublisherProfile) IsRegisteredVendor() bool {
	return p.VendorStatus == VendorStatusRegistered
}

// TotalFollowers sums follower counts across all connected platforms.
func (p PublisherProfile) TotalFollowers() int64 {
	var total int64
	for _, pl := range p.Platforms {
		total += pl.FollowerCount
	}
	return total
}

// MatchPublisherData is the reduced publisher record consumed by the mix analyzer
// and the budget optimizer.
type MatchPublisherData struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Neighborhoods []string   `json:"neighborhoods"`
	Languages     []string   `json:"languages"`
	Ethnicities   []string   `json:"ethnicities,omitempty"`
	Reach         int64      `json:"reach"`
	Score         int        `json:"score"`
	EstimatedCost *CostRange `json:"estimatedCost,omitempty"`
}

// MatchPublisherDataFromResult reduces a scored profile to the analyzer record.
func MatchPublisherDataFromResult(p PublisherProfile, r MatchResult) MatchPublisherData {
	d := MatchPublisherData{
		ID:    p.ID,
		Name:  p.Name,
		Reach: p.TotalFollowers(),
		Score: r.OverallScore,
	}
	if g := p.Audience.Geographic; g != nil {
		d.Neighborhoods = append([]string(nil), g.Neighborhoods...)
	}
	if dm := p.Audience.Demographic; dm != nil {
		d.Languages = append([]string(nil), dm.Languages...)
	}
	if c := p.Audience.Cultural; c != nil {
		d.Ethnicities = append([]string(nil), c.Ethnicities...)
	}
	if r.EstimatedCost.High > 0 {
		cost := r.EstimatedCost
		d.EstimatedCost = &cost
	}
	return d
}
