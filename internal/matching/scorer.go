// internal/matching/scorer.go
package matching

import (
	"math"

	"resonate-workers/internal/models"
)

// Score rates how well a publisher's audience fits the target on a 0-100 scale.
func (e *Engine) Score(target models.TargetAudience, publisher models.PublisherProfile) models.MatchResult {
	aud := publisher.Audience

	geoScore, geo := e.scoreGeographic(target.Geographic, aud.Geographic)
	demoScore, demo := e.scoreDemographic(target.Demographic, aud.Demographic)
	econScore, econ := e.scoreEconomic(target.Economic, aud.Economic)
	cultScore, cult := e.scoreCultural(target.Cultural, aud.Cultural)
	reachScore := e.scoreReach(publisher.Platforms)

	scores := models.DimensionScores{
		Geographic:  geoScore,
		Demographic: demoScore,
		Economic:    econScore,
		Cultural:    cultScore,
		Reach:       reachScore,
	}
	weights := e.cfg.NormalizeWeights(target.PriorityWeights)

	var details models.MatchDetails
	if geoScore >= e.cfg.DetailThreshold && len(geoMatched(geo)) > 0 {
		details.Geographic = geo
	}
	if demoScore >= e.cfg.DetailThreshold && len(demoMatched(demo)) > 0 {
		details.Demographic = demo
	}
	if econScore >= e.cfg.DetailThreshold && len(econMatched(econ)) > 0 {
		details.Economic = econ
	}
	if cultScore >= e.cfg.DetailThreshold && len(cultMatched(cult)) > 0 {
		details.Cultural = cult
	}

	matched := map[models.Dimension][]string{
		models.DimensionGeographic:  geoMatched(geo),
		models.DimensionDemographic: demoMatched(demo),
		models.DimensionEconomic:    econMatched(econ),
		models.DimensionCultural:    cultMatched(cult),
	}

	followers := publisher.TotalFollowers()
	avgEngagement, _ := averageEngagement(publisher.Platforms)

	return models.MatchResult{
		PublisherID:     publisher.ID,
		PublisherName:   publisher.Name,
		OverallScore:    OverallScore(scores, weights),
		Scores:          scores,
		MatchDetails:    details,
		MatchReasons:    e.matchReasons(details, reachScore),
		ConfidenceLevel: confidenceLevel(publisher.VerificationLevel),
		EstimatedCost:   e.estimateCost(publisher.RateCard),
		EstimatedReach:  e.estimateReach(followers, avgEngagement),
		Breakdown:       breakdown(scores, weights, matched),
	}
}

// OverallScore is the rounded weighted sum of the dimension scores, clamped to [0, 100].
func OverallScore(scores models.DimensionScores, weights Weights) int {
	var total float64
	for _, d := range models.Dimensions {
		total += weights[d] * float64(scores.Get(d))
	}
	return clamp(int(math.Round(total)), 0, 100)
}

// tally accumulates weighted overlap ratios across the sub-criteria of one dimension.
type tally struct {
	total float64
	max   float64
}

// add counts a sub-criterion only when both sides define it and returns the overlap.
func (t *tally) add(weight float64, target, have []string) []string {
	ts, hs := NewSet(target...), NewSet(have...)
	if ts.Len() == 0 || hs.Len() == 0 {
		return nil
	}
	t.max += weight
	overlap := ts.Intersect(hs)
	if overlap.Len() > 0 {
		t.total += weight * float64(overlap.Len()) / float64(ts.Len())
	}
	return overlap.Sorted()
}

func (t tally) score(neutral int) int {
	if t.max == 0 {
		return neutral
	}
	return clamp(int(math.Round(100*t.total/t.max)), 0, 100)
}

func (e *Engine) scoreGeographic(target, have *models.GeographicTarget) (int, *models.GeographicMatch) {
	match := &models.GeographicMatch{}
	if have == nil {
		have = &models.GeographicTarget{}
	}

	if target == nil || (!target.Citywide && len(NewSet(target.Neighborhoods...)) == 0 &&
		len(NewSet(target.DistrictIDs...)) == 0 && len(NewSet(target.ZipCodes...)) == 0) {
		if have.Citywide {
			return e.cfg.Geographic.UntargetedCitywide, match
		}
		return e.cfg.NeutralScore, match
	}

	if target.Citywide && have.Citywide {
		return e.cfg.Geographic.BothCitywide, match
	}

	var t tally
	add := func(weight float64, targetItems, haveItems []string) []string {
		ts := NewSet(targetItems...)
		if ts.Len() == 0 {
			return nil
		}
		t.max += weight
		overlap := ts.Intersect(NewSet(haveItems...))
		switch {
		case overlap.Len() > 0:
			t.total += weight * float64(overlap.Len()) / float64(ts.Len())
		case have.Citywide:
			t.total += weight * e.cfg.Geographic.CitywidePartialCredit
		}
		return overlap.Sorted()
	}

	match.Neighborhoods = add(e.cfg.Geographic.Neighborhoods, target.Neighborhoods, have.Neighborhoods)
	match.Districts = add(e.cfg.Geographic.Districts, target.DistrictIDs, have.DistrictIDs)
	match.ZipCodes = add(e.cfg.Geographic.ZipCodes, target.ZipCodes, have.ZipCodes)

	return t.score(e.cfg.NeutralScore), match
}

func (e *Engine) scoreDemographic(target, have *models.DemographicTarget) (int, *models.DemographicMatch) {
	match := &models.DemographicMatch{}
	if target == nil || have == nil {
		return e.cfg.NeutralScore, match
	}

	var t tally
	w := e.cfg.Demographic
	match.Languages = t.add(w.Languages, target.Languages, have.Languages)
	match.AgeRanges = t.add(w.AgeRanges, target.AgeRanges, have.AgeRanges)
	match.EducationLevels = t.add(w.EducationLevels, target.EducationLevels, have.EducationLevels)
	match.FamilyStatus = t.add(w.FamilyStatus, target.FamilyStatus, have.FamilyStatus)

	return t.score(e.cfg.NeutralScore), match
}

func (e *Engine) scoreEconomic(target, have *models.EconomicTarget) (int, *models.EconomicMatch) {
	match := &models.EconomicMatch{}
	if target == nil {
		return e.cfg.NeutralScore, match
	}
	if have == nil {
		have = &models.EconomicTarget{}
	}

	var t tally
	w := e.cfg.Economic
	match.IncomeLevels = t.add(w.IncomeLevels, target.IncomeLevels, have.IncomeLevels)
	match.HousingStatus = t.add(w.HousingStatus, target.HousingStatus, have.HousingStatus)
	match.BenefitPrograms = t.add(w.BenefitPrograms, target.BenefitPrograms, have.BenefitPrograms)

	if target.PublicBenefitsRecipients {
		t.max += w.BenefitsRecipients
		if have.PublicBenefitsRecipients {
			t.total += w.BenefitsRecipients
			match.BenefitsRecipients = true
		}
	}

	return t.score(e.cfg.NeutralScore), match
}

func (e *Engine) scoreCultural(target, have *models.CulturalTarget) (int, *models.CulturalMatch) {
	match := &models.CulturalMatch{}
	if target == nil || have == nil {
		return e.cfg.NeutralScore, match
	}

	var t tally
	w := e.cfg.Cultural
	match.Ethnicities = t.add(w.Ethnicities, target.Ethnicities, have.Ethnicities)
	match.CommunityAffiliations = t.add(w.CommunityAffiliations, target.CommunityAffiliations, have.CommunityAffiliations)
	match.IdentityFactors = t.add(w.IdentityFactors, target.IdentityFactors, have.IdentityFactors)

	return t.score(e.cfg.NeutralScore), match
}

func (e *Engine) scoreReach(platforms []models.PlatformPresence) int {
	var followers int64
	verified := 0
	for _, p := range platforms {
		followers += p.FollowerCount
		if p.Verified {
			verified++
		}
	}

	rc := e.cfg.Reach
	score := rc.FloorScore
	for _, tier := range rc.Tiers {
		if followers >= tier.MinFollowers {
			score = tier.Score
			break
		}
	}

	if avg, ok := averageEngagement(platforms); ok {
		for _, b := range rc.EngagementBonus {
			if avg >= b.MinRate {
				score += b.Bonus
				break
			}
		}
	}

	bonus := verified * rc.VerifiedBonus
	if bonus > rc.VerifiedBonusCap {
		bonus = rc.VerifiedBonusCap
	}
	score += bonus

	return clamp(score, 0, 100)
}

// averageEngagement averages the engagement rate over platforms that report one.
func averageEngagement(platforms []models.PlatformPresence) (float64, bool) {
	var sum float64
	n := 0
	for _, p := range platforms {
		if p.EngagementRate != nil {
			sum += *p.EngagementRate
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (e *Engine) estimateCost(card []models.RateCardItem) models.CostRange {
	if len(card) == 0 {
		return models.CostRange{}
	}
	lo, hi := card[0].PriceCents, card[0].PriceCents
	for _, item := range card[1:] {
		if item.PriceCents < lo {
			lo = item.PriceCents
		}
		if item.PriceCents > hi {
			hi = item.PriceCents
		}
	}
	return models.CostRange{
		Low:  int64(math.Round(float64(lo) * e.cfg.Estimates.MinRateMultiplier)),
		High: int64(math.Round(float64(hi) * e.cfg.Estimates.MaxRateMultiplier)),
	}
}

func (e *Engine) estimateReach(followers int64, avgEngagement float64) models.ReachEstimate {
	est := e.cfg.Estimates
	f := float64(followers)
	engaged := f * avgEngagement / 100
	return models.ReachEstimate{
		Impressions: models.Range{
			Low:  int64(math.Round(f * est.ImpressionsLow)),
			High: int64(math.Round(f * est.ImpressionsHigh)),
		},
		Engagements: models.Range{
			Low:  int64(math.Round(engaged * est.EngagementsLow)),
			High: int64(math.Round(engaged * est.EngagementsHigh)),
		},
	}
}

func confidenceLevel(verification string) string {
	switch Normalize(verification) {
	case models.VerificationVerified:
		return models.ConfidenceHigh
	case models.VerificationPartiallyVerified:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
