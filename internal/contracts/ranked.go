package contracts

// RankedInvestmentIdea is a filtered idea with ranking information
// ⭐ SSOT: Ranker 출력 (생성 후 불변)
type RankedInvestmentIdea struct {
	InvestmentIdea
	Rank           int             `json:"rank"`         // 1-based ranking
	RankingScore   float64         `json:"rankingScore"` // Σcontribution / Σweight
	RankingFactors []RankingFactor `json:"rankingFactors"`
}

// RankingFactor is the audit record of one weighted factor
type RankingFactor struct {
	Factor       Factor  `json:"factor"`
	Weight       float64 `json:"weight"`
	Score        float64 `json:"score"`
	Contribution float64 `json:"contribution"` // Weight * Score
	Explanation  string  `json:"explanation"`
}

// Factor names the five ranking inputs
type Factor string

const (
	FactorConfidence     Factor = "confidence"
	FactorRiskReturn     Factor = "risk-return"
	FactorTimeHorizon    Factor = "time-horizon"
	FactorQualityNovelty Factor = "quality-novelty"
	FactorMarketTiming   Factor = "market-timing"
)

// AllFactors returns the factors in reporting order
func AllFactors() []Factor {
	return []Factor{
		FactorConfidence,
		FactorRiskReturn,
		FactorTimeHorizon,
		FactorQualityNovelty,
		FactorMarketTiming,
	}
}

// IsTopRanked checks if the idea is in top N ranks
func (r *RankedInvestmentIdea) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
