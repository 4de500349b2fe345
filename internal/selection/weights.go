package selection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// FactorWeights maps each ranking factor to its weight
// ⭐ SSOT: 점수 계산과 RankingFactor.Weight 모두 이 테이블만 사용
type FactorWeights map[contracts.Factor]float64

// DefaultFactorWeights returns the standard weight table
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		contracts.FactorConfidence:     0.30,
		contracts.FactorRiskReturn:     0.25,
		contracts.FactorTimeHorizon:    0.15,
		contracts.FactorQualityNovelty: 0.20,
		contracts.FactorMarketTiming:   0.10,
	}
	// Total: 100%
}

// Weight returns the weight of a factor (0 if absent)
func (w FactorWeights) Weight(f contracts.Factor) float64 {
	return w[f]
}

// Sum returns the total weight over all five factors
func (w FactorWeights) Sum() float64 {
	values := make([]float64, 0, len(contracts.AllFactors()))
	for _, f := range contracts.AllFactors() {
		values = append(values, w[f])
	}
	return floats.Sum(values)
}

// Validate checks that every factor has a non-negative weight and the table sums to 1.0
func (w FactorWeights) Validate() error {
	for _, f := range contracts.AllFactors() {
		v, ok := w[f]
		if !ok {
			return fmt.Errorf("missing weight for factor %s", f)
		}
		if v < 0 {
			return fmt.Errorf("negative weight for factor %s: %.2f", f, v)
		}
	}
	// Allow small floating point error
	if sum := w.Sum(); math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("factor weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// riskReturnBlend weights (1 - riskScore) against the normalized expected return
type riskReturnBlend struct {
	risk   float64
	reward float64
}

// riskReturnBlends per tolerance: 보수적일수록 리스크 비중이 큼
var riskReturnBlends = map[contracts.RiskTolerance]riskReturnBlend{
	contracts.ToleranceConservative: {risk: 0.7, reward: 0.3},
	contracts.ToleranceModerate:     {risk: 0.5, reward: 0.5},
	contracts.ToleranceAggressive:   {risk: 0.3, reward: 0.7},
}

// Scoring constants
const (
	neutralScore          = 0.5
	returnNormalization   = 0.20 // 20% expected return = full score
	horizonStepPenalty    = 0.25
	qualityNoveltyDivisor = 200.0

	bullishBonus       = 0.2
	bearishPenalty     = 0.1
	lowGeoRiskBonus    = 0.1
	highGeoRiskPenalty = 0.2
)
