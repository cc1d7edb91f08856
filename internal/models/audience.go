// internal/models/audience.go
package models

// TargetAudience is the audience a campaign wants to reach. Every facet group is
// optional; a nil group or empty list means the facet is not a targeting criterion.
type TargetAudience struct {
	Market          string             `json:"market,omitempty"`
	Geographic      *GeographicTarget  `json:"geographic,omitempty"`
	Demographic     *DemographicTarget `json:"demographic,omitempty"`
	Economic        *EconomicTarget    `json:"economic,omitempty"`
	Cultural        *CulturalTarget    `json:"cultural,omitempty"`
	PriorityWeights *PriorityWeights   `json:"priorityWeights,omitempty"`
}

type GeographicTarget struct {
	Citywide      bool     `json:"citywide"`
	Neighborhoods []string `json:"neighborhoods,omitempty"`
	ZipCodes      []string `json:"zipCodes,omitempty"`
	DistrictIDs   []string `json:"districtIds,omitempty"`
}

type DemographicTarget struct {
	AgeRanges       []string `json:"ageRanges,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	EducationLevels []string `json:"educationLevels,omitempty"`
	FamilyStatus    []string `json:"familyStatus,omitempty"`
}

type EconomicTarget struct {
	IncomeLevels             []string `json:"incomeLevels,omitempty"`
	HousingStatus            []string `json:"housingStatus,omitempty"`
	BenefitPrograms          []string `json:"benefitPrograms,omitempty"`
	PublicBenefitsRecipients bool     `json:"publicBenefitsRecipients"`
}

type CulturalTarget struct {
	Ethnicities           []string `json:"ethnicities,omitempty"`
	CommunityAffiliations []string `json:"communityAffiliations,omitempty"`
	IdentityFactors       []string `json:"identityFactors,omitempty"`
}

// PriorityWeights overrides individual dimension weights. Nil fields keep the
// configured default for that dimension.
type PriorityWeights struct {
	Geographic  *int `json:"geographic,omitempty"`
	Demographic *int `json:"demographic,omitempty"`
	Economic    *int `json:"economic,omitempty"`
	Cultural    *int `json:"cultural,omitempty"`
	Reach       *int `json:"reach,omitempty"`
}

// Neighborhoods returns the target neighborhoods, or nil when none are set.
func (t TargetAudience) Neighborhoods() []string {
	if t.Geographic == nil {
		return nil
	}
	return t.Geographic.Neighborhoods
}

// Languages returns the target languages, or nil when none are set.
func (t TargetAudience) Languages() []string {
	if t.Demographic == nil {
		return nil
	}
	return t.Demographic.Languages
}

// Ethnicities returns the target ethnicities, or nil when none are set.
func (t TargetAudience) Ethnicities() []string {
	if t.Cultural == nil {
		return nil
	}
	return t.Cultural.Ethnicities
}
