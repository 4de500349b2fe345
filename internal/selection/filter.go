package selection

import (
	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// FilterEngine applies the caller's hard criteria to persisted drafts
// ⭐ SSOT: 아이디어 필터링 로직은 여기서만
type FilterEngine struct {
	logger *logger.Logger
}

// NewFilterEngine creates a new filter engine
func NewFilterEngine(logger *logger.Logger) *FilterEngine {
	return &FilterEngine{logger: logger}
}

// criterion is one filter step: keep reports whether an idea survives it
type criterion struct {
	name  string
	kind  contracts.CriterionType
	value interface{}
	keep  func(idea *contracts.InvestmentIdea) bool
}

// ApplyFilters runs the criteria present in params in fixed order.
// Each FilterCriteria.AppliedCount counts ideas removed by that step alone,
// measured against the set entering the step. Survivor order follows the input.
func (f *FilterEngine) ApplyFilters(ideas []contracts.InvestmentIdea, params *contracts.GenerationParameters) ([]contracts.InvestmentIdea, []contracts.FilterCriteria) {
	current := make([]contracts.InvestmentIdea, len(ideas))
	copy(current, ideas)

	applied := make([]contracts.FilterCriteria, 0)
	if params == nil {
		return current, applied
	}

	for _, c := range buildCriteria(params) {
		next := make([]contracts.InvestmentIdea, 0, len(current))
		for i := range current {
			if c.keep(&current[i]) {
				next = append(next, current[i])
			}
		}

		applied = append(applied, contracts.FilterCriteria{
			Criterion:    c.name,
			Type:         c.kind,
			Value:        c.value,
			AppliedCount: len(current) - len(next),
		})
		current = next
	}

	removed := make(map[string]int, len(applied))
	for _, a := range applied {
		removed[a.Criterion] = a.AppliedCount
	}
	f.logger.WithFields(map[string]interface{}{
		"total_input":  len(ideas),
		"passed":       len(current),
		"filtered_out": len(ideas) - len(current),
		"filters":      removed,
	}).Info("Filtering completed")

	return current, applied
}

// buildCriteria returns only the criteria supplied in params, in application order
func buildCriteria(params *contracts.GenerationParameters) []criterion {
	criteria := make([]criterion, 0, 7)

	// 1. Minimum confidence
	if params.MinimumConfidence != nil {
		floor := *params.MinimumConfidence
		criteria = append(criteria, criterion{
			name:  contracts.CriterionMinimumConfidence,
			kind:  contracts.CriterionInclusion,
			value: floor,
			keep: func(idea *contracts.InvestmentIdea) bool {
				return idea.ConfidenceScore >= floor
			},
		})
	}

	// 2. Horizon compatibility: at most one step away on the scale
	if params.InvestmentHorizon != "" {
		want := params.InvestmentHorizon
		criteria = append(criteria, criterion{
			name:  contracts.CriterionTimeHorizon,
			kind:  contracts.CriterionInclusion,
			value: want,
			keep: func(idea *contracts.InvestmentIdea) bool {
				d, ok := contracts.HorizonDistance(idea.TimeHorizon, want)
				return ok && d <= 1
			},
		})
	}

	// 3. Risk compatibility
	if params.RiskTolerance != "" {
		tolerance := params.RiskTolerance
		criteria = append(criteria, criterion{
			name:  contracts.CriterionRiskTolerance,
			kind:  contracts.CriterionInclusion,
			value: tolerance,
			keep: func(idea *contracts.InvestmentIdea) bool {
				return tolerance.Allows(idea.RiskLevel)
			},
		})
	}

	// 4. Sector match
	if len(params.Sectors) > 0 {
		sectors := newTagSet(params.Sectors)
		criteria = append(criteria, criterion{
			name:  contracts.CriterionSectors,
			kind:  contracts.CriterionInclusion,
			value: params.Sectors,
			keep: func(idea *contracts.InvestmentIdea) bool {
				for _, inv := range idea.Investments {
					if sectors.has(inv.Sector) {
						return true
					}
				}
				return false
			},
		})
	}

	// 5. Asset-class match
	if len(params.AssetClasses) > 0 {
		classes := make([]string, len(params.AssetClasses))
		for i, c := range params.AssetClasses {
			classes[i] = string(c)
		}
		classSet := newTagSet(classes)
		criteria = append(criteria, criterion{
			name:  contracts.CriterionAssetClasses,
			kind:  contracts.CriterionInclusion,
			value: params.AssetClasses,
			keep: func(idea *contracts.InvestmentIdea) bool {
				for _, inv := range idea.Investments {
					if classSet.has(string(inv.Type)) {
						return true
					}
				}
				return false
			},
		})
	}

	// 6. Exclusion list (name or ticker)
	if len(params.ExcludedInvestments) > 0 {
		excluded := newTagSet(params.ExcludedInvestments)
		criteria = append(criteria, criterion{
			name:  contracts.CriterionExcludedInvestments,
			kind:  contracts.CriterionExclusion,
			value: params.ExcludedInvestments,
			keep: func(idea *contracts.InvestmentIdea) bool {
				for _, inv := range idea.Investments {
					if excluded.has(inv.Name) || excluded.has(inv.Ticker) {
						return false
					}
				}
				return true
			},
		})
	}

	// 7. Target-audience match
	if len(params.TargetAudience) > 0 {
		audiences := params.TargetAudience
		criteria = append(criteria, criterion{
			name:  contracts.CriterionTargetAudience,
			kind:  contracts.CriterionInclusion,
			value: audiences,
			keep: func(idea *contracts.InvestmentIdea) bool {
				return idea.HasAudience(audiences)
			},
		})
	}

	return criteria
}

// tagSet is a case-insensitive set of free-form tags; blank tags never match
type tagSet map[string]struct{}

func newTagSet(tags []string) tagSet {
	set := make(tagSet, len(tags))
	for _, t := range tags {
		if k := contracts.NormalizeTag(t); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func (s tagSet) has(tag string) bool {
	k := contracts.NormalizeTag(tag)
	if k == "" {
		return false
	}
	_, ok := s[k]
	return ok
}
