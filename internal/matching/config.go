// internal/matching/config.go
package matching

import (
	"resonate-workers/internal/models"
)

type DimensionWeights struct {
	Geographic  int `mapstructure:"geographic" json:"geographic"`
	Demographic int `mapstructure:"demographic" json:"demographic"`
	Economic    int `mapstructure:"economic" json:"economic"`
	Cultural    int `mapstructure:"cultural" json:"cultural"`
	Reach       int `mapstructure:"reach" json:"reach"`
}

// GeographicConfig holds the internal sub-criterion weights of the geographic dimension.
type GeographicConfig struct {
	Neighborhoods         float64 `mapstructure:"neighborhoods"`
	Districts             float64 `mapstructure:"districts"`
	ZipCodes              float64 `mapstructure:"zip_codes"`
	CitywidePartialCredit float64 `mapstructure:"citywide_partial_credit"`
	UntargetedCitywide    int     `mapstructure:"untargeted_citywide"`
	BothCitywide          int     `mapstructure:"both_citywide"`
}

type DemographicConfig struct {
	Languages       float64 `mapstructure:"languages"`
	AgeRanges       float64 `mapstructure:"age_ranges"`
	EducationLevels float64 `mapstructure:"education_levels"`
	FamilyStatus    float64 `mapstructure:"family_status"`
}

type EconomicConfig struct {
	IncomeLevels       float64 `mapstructure:"income_levels"`
	HousingStatus      float64 `mapstructure:"housing_status"`
	BenefitPrograms    float64 `mapstructure:"benefit_programs"`
	BenefitsRecipients float64 `mapstructure:"benefits_recipients"`
}

type CulturalConfig struct {
	Ethnicities           float64 `mapstructure:"ethnicities"`
	CommunityAffiliations float64 `mapstructure:"community_affiliations"`
	IdentityFactors       float64 `mapstructure:"identity_factors"`
}

type ReachTier struct {
	MinFollowers int64 `mapstructure:"min_followers"`
	Score        int   `mapstructure:"score"`
}

type EngagementBonus struct {
	MinRate float64 `mapstructure:"min_rate"`
	Bonus   int     `mapstructure:"bonus"`
}

// ReachConfig tiers and bonuses are evaluated in order; the first match wins.
type ReachConfig struct {
	Tiers            []ReachTier       `mapstructure:"tiers"`
	FloorScore       int               `mapstructure:"floor_score"`
	EngagementBonus  []EngagementBonus `mapstructure:"engagement_bonus"`
	VerifiedBonus    int               `mapstructure:"verified_bonus"`
	VerifiedBonusCap int               `mapstructure:"verified_bonus_cap"`
}

type EstimateConfig struct {
	MinRateMultiplier  float64 `mapstructure:"min_rate_multiplier"`
	MaxRateMultiplier  float64 `mapstructure:"max_rate_multiplier"`
	ImpressionsLow     float64 `mapstructure:"impressions_low"`
	ImpressionsHigh    float64 `mapstructure:"impressions_high"`
	EngagementsLow     float64 `mapstructure:"engagements_low"`
	EngagementsHigh    float64 `mapstructure:"engagements_high"`
	DefaultCostCents   int64   `mapstructure:"default_cost_cents"`
	CostEfficiencyUnit float64 `mapstructure:"cost_efficiency_unit"`
}

// PriorityBlend weights coverage, quality and cost efficiency when ranking candidates.
type PriorityBlend struct {
	Coverage       float64 `mapstructure:"coverage"`
	Quality        float64 `mapstructure:"quality"`
	CostEfficiency float64 `mapstructure:"cost_efficiency"`
}

type Config struct {
	Weights              DimensionWeights         `mapstructure:"weights"`
	Geographic           GeographicConfig         `mapstructure:"geographic"`
	Demographic          DemographicConfig        `mapstructure:"demographic"`
	Economic             EconomicConfig           `mapstructure:"economic"`
	Cultural             CulturalConfig           `mapstructure:"cultural"`
	Reach                ReachConfig              `mapstructure:"reach"`
	Estimates            EstimateConfig           `mapstructure:"estimates"`
	NeutralScore         int                      `mapstructure:"neutral_score"`
	DetailThreshold      int                      `mapstructure:"detail_threshold"`
	StrongReachThreshold int                      `mapstructure:"strong_reach_threshold"`
	ListLimit            int                      `mapstructure:"list_limit"`
	MinScore             int                      `mapstructure:"min_score"`
	MaxResults           int                      `mapstructure:"max_results"`
	MinPublishers        int                      `mapstructure:"min_publishers"`
	MaxPublishers        int                      `mapstructure:"max_publishers"`
	Priorities           map[string]PriorityBlend `mapstructure:"priorities"`
}

func DefaultConfig() Config {
	return Config{
		Weights: DimensionWeights{
			Geographic:  25,
			Demographic: 20,
			Economic:    20,
			Cultural:    25,
			Reach:       10,
		},
		Geographic: GeographicConfig{
			Neighborhoods:         50,
			Districts:             30,
			ZipCodes:              20,
			CitywidePartialCredit: 0.5,
			UntargetedCitywide:    70,
			BothCitywide:          85,
		},
		Demographic: DemographicConfig{
			Languages:       40,
			AgeRanges:       30,
			EducationLevels: 15,
			FamilyStatus:    15,
		},
		Economic: EconomicConfig{
			IncomeLevels:       35,
			HousingStatus:      25,
			BenefitPrograms:    25,
			BenefitsRecipients: 15,
		},
		Cultural: CulturalConfig{
			Ethnicities:           35,
			CommunityAffiliations: 35,
			IdentityFactors:       30,
		},
		Reach: ReachConfig{
			Tiers: []ReachTier{
				{MinFollowers: 50000, Score: 80},
				{MinFollowers: 20000, Score: 70},
				{MinFollowers: 10000, Score: 60},
				{MinFollowers: 5000, Score: 50},
				{MinFollowers: 1000, Score: 40},
			},
			FloorScore: 25,
			EngagementBonus: []EngagementBonus{
				{MinRate: 5, Bonus: 20},
				{MinRate: 3, Bonus: 10},
				{MinRate: 1, Bonus: 5},
			},
			VerifiedBonus:    3,
			VerifiedBonusCap: 10,
		},
		Estimates: EstimateConfig{
			MinRateMultiplier:  2,
			MaxRateMultiplier:  3,
			ImpressionsLow:     0.3,
			ImpressionsHigh:    0.8,
			EngagementsLow:     0.5,
			EngagementsHigh:    1.5,
			DefaultCostCents:   50000,
			CostEfficiencyUnit: 10000,
		},
		NeutralScore:         50,
		DetailThreshold:      60,
		StrongReachThreshold: 70,
		ListLimit:            DefaultListLimit,
		MinScore:             30,
		MaxResults:           20,
		MinPublishers:        1,
		MaxPublishers:        10,
		Priorities: map[string]PriorityBlend{
			string(models.PriorityCoverage): {Coverage: 0.5, Quality: 0.3, CostEfficiency: 0.2},
			string(models.PriorityQuality):  {Coverage: 0.3, Quality: 0.5, CostEfficiency: 0.2},
			string(models.PriorityCost):     {Coverage: 0.2, Quality: 0.2, CostEfficiency: 0.6},
		},
	}
}

// Weights are normalized dimension weights summing to 1.
type Weights map[models.Dimension]float64

// NormalizeWeights merges the per-dimension overrides onto the configured defaults and
// rescales the result to sum to 1. Negative overrides count as zero; if nothing positive
// remains the defaults are used.
func (c Config) NormalizeWeights(override *models.PriorityWeights) Weights {
	raw := map[models.Dimension]int{
		models.DimensionGeographic:  c.Weights.Geographic,
		models.DimensionDemographic: c.Weights.Demographic,
		models.DimensionEconomic:    c.Weights.Economic,
		models.DimensionCultural:    c.Weights.Cultural,
		models.DimensionReach:       c.Weights.Reach,
	}
	defaults := make(map[models.Dimension]int, len(raw))
	for d, w := range raw {
		defaults[d] = w
	}

	if override != nil {
		apply := func(d models.Dimension, v *int) {
			if v != nil {
				raw[d] = *v
			}
		}
		apply(models.DimensionGeographic, override.Geographic)
		apply(models.DimensionDemographic, override.Demographic)
		apply(models.DimensionEconomic, override.Economic)
		apply(models.DimensionCultural, override.Cultural)
		apply(models.DimensionReach, override.Reach)
	}

	if w := rescale(raw); w != nil {
		return w
	}
	if w := rescale(defaults); w != nil {
		return w
	}

	equal := make(Weights, len(models.Dimensions))
	for _, d := range models.Dimensions {
		equal[d] = 1 / float64(len(models.Dimensions))
	}
	return equal
}

func rescale(raw map[models.Dimension]int) Weights {
	total := 0
	for _, w := range raw {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return nil
	}
	out := make(Weights, len(raw))
	for d, w := range raw {
		if w < 0 {
			w = 0
		}
		out[d] = float64(w) / float64(total)
	}
	return out
}

// Blend returns the weight triple for a priority, falling back to coverage.
func (c Config) Blend(p models.Priority) PriorityBlend {
	if b, ok := c.Priorities[string(p)]; ok {
		return b
	}
	if b, ok := c.Priorities[string(models.PriorityCoverage)]; ok {
		return b
	}
	return DefaultConfig().Priorities[string(models.PriorityCoverage)]
}
