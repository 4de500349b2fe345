package selection

import (
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// ConfidenceDistributionOf buckets the final ranked set into confidence bands.
// high > 0.8, medium 0.5 ~ 0.8 (inclusive), low < 0.5; an empty set is all zeros.
func ConfidenceDistributionOf(ideas []contracts.RankedInvestmentIdea) contracts.ConfidenceDistribution {
	var dist contracts.ConfidenceDistribution
	if len(ideas) == 0 {
		return dist
	}

	scores := make([]float64, len(ideas))
	for i, idea := range ideas {
		c := idea.ConfidenceScore
		scores[i] = c

		switch {
		case c > contracts.HighConfidenceThreshold:
			dist.High++
		case c >= contracts.MediumConfidenceThreshold:
			dist.Medium++
		default:
			dist.Low++
		}
	}

	dist.Average = stat.Mean(scores, nil)
	return dist
}
