package selection

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// Ranker scores, orders and caps filtered ideas
// ⭐ SSOT: 아이디어 랭킹 로직은 여기서만
type Ranker struct {
	weights FactorWeights
	logger  *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(weights FactorWeights, logger *logger.Logger) *Ranker {
	return &Ranker{
		weights: weights,
		logger:  logger,
	}
}

// Rank scores every idea, sorts by score (stable, descending), truncates to
// params.MaxIdeas() and assigns rank = index + 1. Input is not modified.
func (r *Ranker) Rank(ideas []contracts.InvestmentIdea, params *contracts.GenerationParameters) []contracts.RankedInvestmentIdea {
	if params == nil {
		params = &contracts.GenerationParameters{}
	}

	ranked := make([]contracts.RankedInvestmentIdea, 0, len(ideas))
	for i := range ideas {
		factors := r.scoreFactors(&ideas[i], params)
		ranked = append(ranked, contracts.RankedInvestmentIdea{
			InvestmentIdea: ideas[i],
			RankingScore:   weightedScore(factors),
			RankingFactors: factors,
		})
	}

	// Sort by ranking score (descending); ties keep input order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankingScore > ranked[j].RankingScore
	})

	if limit := params.MaxIdeas(); limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"total_input": len(ideas),
		"ranked":      len(ranked),
	}
	if len(ranked) > 0 {
		fields["top_score"] = ranked[0].RankingScore
		fields["top_title"] = ranked[0].Title
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}

// weightedScore returns Σ(weight × score) / Σ(weight)
func weightedScore(factors []contracts.RankingFactor) float64 {
	weights := make([]float64, len(factors))
	scores := make([]float64, len(factors))
	for i, f := range factors {
		weights[i] = f.Weight
		scores[i] = f.Score
	}

	total := floats.Sum(weights)
	if total == 0 {
		return 0
	}
	return floats.Dot(weights, scores) / total
}

// scoreFactors computes the five factors in reporting order
func (r *Ranker) scoreFactors(idea *contracts.InvestmentIdea, params *contracts.GenerationParameters) []contracts.RankingFactor {
	factors := make([]contracts.RankingFactor, 0, len(contracts.AllFactors()))

	add := func(f contracts.Factor, score float64, explanation string) {
		w := r.weights.Weight(f)
		factors = append(factors, contracts.RankingFactor{
			Factor:       f,
			Weight:       w,
			Score:        score,
			Contribution: w * score,
			Explanation:  explanation,
		})
	}

	add(contracts.FactorConfidence, idea.ConfidenceScore,
		fmt.Sprintf("confidence score %.2f", idea.ConfidenceScore))

	score, why := riskReturnScore(idea, params.RiskTolerance)
	add(contracts.FactorRiskReturn, score, why)

	score, why = timeHorizonScore(idea.TimeHorizon, params.InvestmentHorizon)
	add(contracts.FactorTimeHorizon, score, why)

	score = (idea.Metadata.QualityScore + idea.Metadata.NoveltyScore) / qualityNoveltyDivisor
	add(contracts.FactorQualityNovelty, score,
		fmt.Sprintf("quality %.0f, novelty %.0f", idea.Metadata.QualityScore, idea.Metadata.NoveltyScore))

	score, why = marketTimingScore(idea.Metadata.MarketConditionsAtGeneration)
	add(contracts.FactorMarketTiming, score, why)

	return factors
}

// riskReturnScore blends (1 - riskScore) with the normalized expected return
func riskReturnScore(idea *contracts.InvestmentIdea, tolerance contracts.RiskTolerance) (float64, string) {
	blend, ok := riskReturnBlends[tolerance]
	if !ok {
		return neutralScore, "no risk tolerance supplied"
	}

	riskScore := idea.RiskLevel.Score()
	expected, _ := idea.ExpectedReturn() // 0 without an expected scenario
	returnScore := math.Min(expected/returnNormalization, 1.0)

	score := blend.risk*(1-riskScore) + blend.reward*returnScore
	return score, fmt.Sprintf("%s risk (%.1f) and %.1f%% expected return under %s tolerance",
		idea.RiskLevel, riskScore, expected*100, tolerance)
}

// timeHorizonScore decays by 0.25 per step of distance on the horizon scale
func timeHorizonScore(ideaHorizon, requested contracts.TimeHorizon) (float64, string) {
	if requested == "" {
		return neutralScore, "no investment horizon requested"
	}

	d, ok := contracts.HorizonDistance(ideaHorizon, requested)
	if !ok {
		return neutralScore, fmt.Sprintf("horizon %q not on the scale", ideaHorizon)
	}

	score := math.Max(0, 1-horizonStepPenalty*float64(d))
	return score, fmt.Sprintf("%s horizon is %d step(s) from requested %s", ideaHorizon, d, requested)
}

// marketTimingScore adjusts a neutral base by trend and geopolitical risk
func marketTimingScore(mc contracts.MarketConditions) (float64, string) {
	score := neutralScore

	switch mc.MarketTrend {
	case contracts.TrendBullish:
		score += bullishBonus
	case contracts.TrendBearish:
		score -= bearishPenalty
	}

	switch mc.GeopoliticalRisk {
	case contracts.GeopoliticalLow:
		score += lowGeoRiskBonus
	case contracts.GeopoliticalHigh:
		score -= highGeoRiskPenalty
	}

	score = math.Max(0, math.Min(1, score))

	trend := string(mc.MarketTrend)
	if trend == "" {
		trend = "unknown"
	}
	geo := string(mc.GeopoliticalRisk)
	if geo == "" {
		geo = "unknown"
	}
	return score, fmt.Sprintf("%s market, %s geopolitical risk", trend, geo)
}
