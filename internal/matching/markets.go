// internal/matching/markets.go
package matching

// Market describes a city the marketplace operates in and how it names its local areas.
type Market struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AreaNoun       string `json:"areaNoun"`
	AreaNounPlural string `json:"areaNounPlural"`
}

const DefaultMarketID = "sf"

var markets = map[string]Market{
	"sf": {
		ID:             "sf",
		Name:           "San Francisco",
		AreaNoun:       "neighborhood",
		AreaNounPlural: "neighborhoods",
	},
	"chicago": {
		ID:             "chicago",
		Name:           "Chicago",
		AreaNoun:       "community area",
		AreaNounPlural: "community areas",
	},
}

// LookupMarket returns the market for id, or San Francisco for an empty or unknown id.
func LookupMarket(id string) Market {
	if m, ok := markets[Normalize(id)]; ok {
		return m
	}
	return markets[DefaultMarketID]
}

// IsKnownMarket reports whether id names a registered market.
func IsKnownMarket(id string) bool {
	_, ok := markets[Normalize(id)]
	return ok
}
