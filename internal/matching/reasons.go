// internal/matching/reasons.go
package matching

import (
	"math"

	"resonate-workers/internal/models"
)

// matchReasons emits one sentence per dimension with populated details, in dimension
// order, followed by a reach sentence when the reach score is strong.
func (e *Engine) matchReasons(d models.MatchDetails, reachScore int) []string {
	limit := e.cfg.ListLimit
	reasons := make([]string, 0, 5)

	if g := d.Geographic; g != nil {
		switch {
		case len(g.Neighborhoods) > 0:
			reasons = append(reasons, "Serves "+FormatList(g.Neighborhoods, limit))
		case len(g.Districts) > 0:
			reasons = append(reasons, "Covers District "+FormatList(g.Districts, limit))
		case len(g.ZipCodes) > 0:
			reasons = append(reasons, "Reaches ZIP codes "+FormatList(g.ZipCodes, limit))
		}
	}

	if dm := d.Demographic; dm != nil {
		switch {
		case len(dm.Languages) > 0:
			reasons = append(reasons, FormatList(dm.Languages, limit)+" content")
		case len(dm.AgeRanges) > 0:
			reasons = append(reasons, "Reaches ages "+FormatList(dm.AgeRanges, limit))
		case len(dm.EducationLevels) > 0:
			reasons = append(reasons, "Reaches "+FormatList(dm.EducationLevels, limit)+" education levels")
		case len(dm.FamilyStatus) > 0:
			reasons = append(reasons, "Reaches "+FormatList(dm.FamilyStatus, limit)+" families")
		}
	}

	if ec := d.Economic; ec != nil {
		switch {
		case ec.BenefitsRecipients:
			reasons = append(reasons, "Reaches benefits recipients")
		case len(ec.IncomeLevels) > 0:
			reasons = append(reasons, "Serves "+FormatList(ec.IncomeLevels, limit)+" income households")
		case len(ec.HousingStatus) > 0:
			reasons = append(reasons, "Reaches "+FormatList(ec.HousingStatus, limit)+" households")
		case len(ec.BenefitPrograms) > 0:
			reasons = append(reasons, "Reaches "+FormatList(ec.BenefitPrograms, limit)+" participants")
		}
	}

	if c := d.Cultural; c != nil {
		communities := append(append([]string(nil), c.Ethnicities...), c.CommunityAffiliations...)
		switch {
		case len(communities) > 0:
			reasons = append(reasons, "Trusted by "+FormatList(communities, limit)+" communities")
		case len(c.IdentityFactors) > 0:
			reasons = append(reasons, "Connects with "+FormatList(c.IdentityFactors, limit)+" audiences")
		}
	}

	if reachScore >= e.cfg.StrongReachThreshold {
		reasons = append(reasons, "Strong audience engagement")
	}

	return reasons
}

func breakdown(scores models.DimensionScores, weights Weights, matched map[models.Dimension][]string) []models.DimensionBreakdown {
	out := make([]models.DimensionBreakdown, 0, len(models.Dimensions))
	for _, d := range models.Dimensions {
		w := weights[d]
		s := scores.Get(d)
		out = append(out, models.DimensionBreakdown{
			Dimension:    d,
			Score:        s,
			Weight:       round2(w),
			Contribution: round2(w * float64(s)),
			Matched:      matched[d],
		})
	}
	return out
}

func geoMatched(m *models.GeographicMatch) []string {
	if m == nil {
		return nil
	}
	return concat(m.Neighborhoods, m.Districts, m.ZipCodes)
}

func demoMatched(m *models.DemographicMatch) []string {
	if m == nil {
		return nil
	}
	return concat(m.Languages, m.AgeRanges, m.EducationLevels, m.FamilyStatus)
}

func econMatched(m *models.EconomicMatch) []string {
	if m == nil {
		return nil
	}
	out := concat(m.IncomeLevels, m.HousingStatus, m.BenefitPrograms)
	if m.BenefitsRecipients {
		out = append(out, "benefits recipients")
	}
	return out
}

func cultMatched(m *models.CulturalMatch) []string {
	if m == nil {
		return nil
	}
	return concat(m.Ethnicities, m.CommunityAffiliations, m.IdentityFactors)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
