// internal/models/results.go
package models

type Dimension string

const (
	DimensionGeographic  Dimension = "geographic"
	DimensionDemographic Dimension = "demographic"
	DimensionEconomic    Dimension = "economic"
	DimensionCultural    Dimension = "cultural"
	DimensionReach       Dimension = "reach"
)

// Dimensions lists the scoring dimensions in presentation order.
var Dimensions = []Dimension{
	DimensionGeographic,
	DimensionDemographic,
	DimensionEconomic,
	DimensionCultural,
	DimensionReach,
}

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

type MatchResult struct {
	PublisherID     string               `json:"publisherId"`
	PublisherName   string               `json:"publisherName"`
	OverallScore    int                  `json:"overallScore"`
	Scores          DimensionScores      `json:"scores"`
	MatchDetails    MatchDetails         `json:"matchDetails"`
	MatchReasons    []string             `json:"matchReasons"`
	ConfidenceLevel string               `json:"confidenceLevel"`
	EstimatedCost   CostRange            `json:"estimatedCost"`
	EstimatedReach  ReachEstimate        `json:"estimatedReach"`
	Breakdown       []DimensionBreakdown `json:"breakdown"`
}

type DimensionScores struct {
	Geographic  int `json:"geographic"`
	Demographic int `json:"demographic"`
	Economic    int `json:"economic"`
	Cultural    int `json:"cultural"`
	Reach       int `json:"reach"`
}

// Get returns the sub-score for d.
func (s DimensionScores) Get(d Dimension) int {
	switch d {
	case DimensionGeographic:
		return s.Geographic
	case DimensionDemographic:
		return s.Demographic
	case DimensionEconomic:
		return s.Economic
	case DimensionCultural:
		return s.Cultural
	case DimensionReach:
		return s.Reach
	}
	return 0
}

// MatchDetails holds the facets that matched, per dimension. A group is nil unless
// its dimension scored at or above the detail threshold with at least one match.
type MatchDetails struct {
	Geographic  *GeographicMatch  `json:"geographic,omitempty"`
	Demographic *DemographicMatch `json:"demographic,omitempty"`
	Economic    *EconomicMatch    `json:"economic,omitempty"`
	Cultural    *CulturalMatch    `json:"cultural,omitempty"`
}

type GeographicMatch struct {
	Neighborhoods []string `json:"neighborhoods,omitempty"`
	Districts     []string `json:"districts,omitempty"`
	ZipCodes      []string `json:"zipCodes,omitempty"`
}

type DemographicMatch struct {
	Languages       []string `json:"languages,omitempty"`
	AgeRanges       []string `json:"ageRanges,omitempty"`
	EducationLevels []string `json:"educationLevels,omitempty"`
	FamilyStatus    []string `json:"familyStatus,omitempty"`
}

type EconomicMatch struct {
	IncomeLevels       []string `json:"incomeLevels,omitempty"`
	HousingStatus      []string `json:"housingStatus,omitempty"`
	BenefitPrograms    []string `json:"benefitPrograms,omitempty"`
	BenefitsRecipients bool     `json:"benefitsRecipients,omitempty"`
}

type CulturalMatch struct {
	Ethnicities           []string `json:"ethnicities,omitempty"`
	CommunityAffiliations []string `json:"communityAffiliations,omitempty"`
	IdentityFactors       []string `json:"identityFactors,omitempty"`
}

// CostRange is expressed in cents.
type CostRange struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// Mid returns the midpoint of the range.
func (c CostRange) Mid() int64 {
	return (c.Low + c.High) / 2
}

type Range struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

type ReachEstimate struct {
	Impressions Range `json:"impressions"`
	Engagements Range `json:"engagements"`
}

// DimensionBreakdown explains how one dimension contributed to the overall score.
type DimensionBreakdown struct {
	Dimension    Dimension `json:"dimension"`
	Score        int       `json:"score"`
	Weight       float64   `json:"weight"`
	Contribution float64   `json:"contribution"`
	Matched      []string  `json:"matched,omitempty"`
}

type MixAnalysis struct {
	CoveredNeighborhoods []string                `json:"coveredNeighborhoods"`
	NeighborhoodGaps     []string                `json:"neighborhoodGaps"`
	CoveredLanguages     []string                `json:"coveredLanguages"`
	LanguageGaps         []string                `json:"languageGaps"`
	CoveredEthnicities   []string                `json:"coveredEthnicities"`
	EthnicityGaps        []string                `json:"ethnicityGaps"`
	GeographicCoverage   int                     `json:"geographicCoverage"`
	LanguageCoverage     int                     `json:"languageCoverage"`
	DemographicCoverage  int                     `json:"demographicCoverage"`
	TotalCost            CostRange               `json:"totalCost"`
	TotalReach           int64                   `json:"totalReach"`
	Contributions        []PublisherContribution `json:"contributions"`
}

type PublisherContribution struct {
	PublisherID         string   `json:"publisherId"`
	PublisherName       string   `json:"publisherName"`
	UniqueNeighborhoods []string `json:"uniqueNeighborhoods"`
	UniqueLanguages     []string `json:"uniqueLanguages"`
	UniqueEthnicities   []string `json:"uniqueEthnicities"`
	IsRedundant         bool     `json:"isRedundant"`
	GapsFilled          []string `json:"gapsFilled"`
}

// PublisherAddValue describes what adding one publisher to the current selection
// would contribute.
type PublisherAddValue struct {
	PublisherID             string   `json:"publisherId"`
	PublisherName           string   `json:"publisherName"`
	NewNeighborhoods        []string `json:"newNeighborhoods"`
	NewLanguages            []string `json:"newLanguages"`
	NewEthnicities          []string `json:"newEthnicities"`
	AlreadyCovered          []string `json:"alreadyCovered"`
	IsRedundant             bool     `json:"isRedundant"`
	GapsFilled              []string `json:"gapsFilled"`
	GeographicCoverageAfter int      `json:"geographicCoverageAfter"`
	LanguageCoverageAfter   int      `json:"languageCoverageAfter"`
}

type Priority string

const (
	PriorityCoverage Priority = "coverage"
	PriorityQuality  Priority = "quality"
	PriorityCost     Priority = "cost"
)

const (
	LabelRecommended      = "Recommended"
	LabelMaximizeCoverage = "Maximize Coverage"
	LabelBestMatchQuality = "Best Match Quality"
	LabelBudgetFriendly   = "Budget Friendly"
)

type OptimizationResult struct {
	SelectedPublishers []string  `json:"selectedPublishers"`
	TotalCost          CostRange `json:"totalCost"`
	TotalReach         int64     `json:"totalReach"`
	CoverageScore      int       `json:"coverageScore"`
	MatchQualityScore  int       `json:"matchQualityScore"`
	Explanation        []string  `json:"explanation"`
	Label              string    `json:"label,omitempty"`
}
