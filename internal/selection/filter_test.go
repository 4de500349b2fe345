package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

func newIdea(title string, confidence float64) contracts.InvestmentIdea {
	return contracts.InvestmentIdea{
		ID:              title,
		Title:           title,
		ConfidenceScore: confidence,
		TimeHorizon:     contracts.HorizonMedium,
		RiskLevel:       contracts.RiskModerate,
		TargetAudience:  []contracts.Audience{contracts.AudienceRetail},
		Investments: []contracts.Investment{
			{Name: title + " Corp", Ticker: title, Type: contracts.TypeStock, Sector: "technology"},
		},
	}
}

func titles(ideas []contracts.InvestmentIdea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Title
	}
	return out
}

func TestApplyFilters_MinimumConfidence(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())
	ideas := []contracts.InvestmentIdea{
		newIdea("A", 0.9),
		newIdea("B", 0.4),
		newIdea("C", 0.6),
	}

	out, criteria := engine.ApplyFilters(ideas, &contracts.GenerationParameters{
		MinimumConfidence: contracts.Float64(0.5),
	})

	assert.Equal(t, []string{"A", "C"}, titles(out))
	require.Len(t, criteria, 1)
	assert.Equal(t, contracts.CriterionMinimumConfidence, criteria[0].Criterion)
	assert.Equal(t, contracts.CriterionInclusion, criteria[0].Type)
	assert.Equal(t, 0.5, criteria[0].Value)
	assert.Equal(t, 1, criteria[0].AppliedCount)
}

func TestApplyFilters_TimeHorizon(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	long := newIdea("long", 0.7)
	long.TimeHorizon = contracts.HorizonLong
	medium := newIdea("medium", 0.7)
	medium.TimeHorizon = contracts.HorizonMedium
	offScale := newIdea("decade", 0.7)
	offScale.TimeHorizon = "decade"

	out, criteria := engine.ApplyFilters(
		[]contracts.InvestmentIdea{long, medium, offScale},
		&contracts.GenerationParameters{InvestmentHorizon: contracts.HorizonShort},
	)

	assert.Equal(t, []string{"medium"}, titles(out))
	require.Len(t, criteria, 1)
	assert.Equal(t, 2, criteria[0].AppliedCount)
}

func TestApplyFilters_RiskTolerance(t *testing.T) {
	levels := []contracts.RiskLevel{
		contracts.RiskVeryLow, contracts.RiskLow, contracts.RiskModerate, contracts.RiskHigh, contracts.RiskVeryHigh,
	}

	tests := []struct {
		tolerance contracts.RiskTolerance
		want      []string
	}{
		{contracts.ToleranceConservative, []string{"very-low", "low"}},
		{contracts.ToleranceModerate, []string{"low", "moderate", "high"}},
		{contracts.ToleranceAggressive, []string{"moderate", "high", "very-high"}},
	}

	engine := NewFilterEngine(logger.NewNop())
	for _, tt := range tests {
		t.Run(string(tt.tolerance), func(t *testing.T) {
			ideas := make([]contracts.InvestmentIdea, len(levels))
			for i, level := range levels {
				ideas[i] = newIdea(string(level), 0.7)
				ideas[i].RiskLevel = level
			}

			out, criteria := engine.ApplyFilters(ideas, &contracts.GenerationParameters{RiskTolerance: tt.tolerance})
			assert.Equal(t, tt.want, titles(out))
			assert.Equal(t, len(levels)-len(tt.want), criteria[0].AppliedCount)
		})
	}
}

func TestApplyFilters_SectorsAndAssetClasses(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	tech := newIdea("tech", 0.7)
	energyBond := newIdea("energy", 0.7)
	energyBond.Investments = []contracts.Investment{
		{Name: "Grid Bond", Type: contracts.TypeBond, Sector: "Energy"},
	}
	mixed := newIdea("mixed", 0.7)
	mixed.Investments = []contracts.Investment{
		{Name: "Utility ETF", Type: contracts.TypeETF, Sector: "utilities"},
		{Name: "Solar Co", Type: contracts.TypeStock, Sector: "ENERGY"},
	}
	ideas := []contracts.InvestmentIdea{tech, energyBond, mixed}

	out, criteria := engine.ApplyFilters(ideas, &contracts.GenerationParameters{
		Sectors: []string{"energy"},
	})
	assert.Equal(t, []string{"energy", "mixed"}, titles(out))
	assert.Equal(t, contracts.CriterionSectors, criteria[0].Criterion)

	out, _ = engine.ApplyFilters(ideas, &contracts.GenerationParameters{
		AssetClasses: []contracts.InvestmentType{contracts.TypeETF, contracts.TypeBond},
	})
	assert.Equal(t, []string{"energy", "mixed"}, titles(out))
}

func TestApplyFilters_ExcludedInvestments(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	a := newIdea("AAPL", 0.7)
	b := newIdea("MSFT", 0.7)
	noTicker := newIdea("private", 0.7)
	noTicker.Investments = []contracts.Investment{{Name: "Private Credit Fund", Type: contracts.TypeOther}}

	out, criteria := engine.ApplyFilters(
		[]contracts.InvestmentIdea{a, b, noTicker},
		&contracts.GenerationParameters{ExcludedInvestments: []string{"aapl", "  ", "Private Credit Fund"}},
	)

	assert.Equal(t, []string{"MSFT"}, titles(out))
	require.Len(t, criteria, 1)
	assert.Equal(t, contracts.CriterionExclusion, criteria[0].Type)
	assert.Equal(t, 2, criteria[0].AppliedCount)
}

func TestApplyFilters_TargetAudience(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	retail := newIdea("retail", 0.7)
	inst := newIdea("inst", 0.7)
	inst.TargetAudience = []contracts.Audience{contracts.AudienceInstitutional, contracts.AudienceProfessional}

	out, _ := engine.ApplyFilters(
		[]contracts.InvestmentIdea{retail, inst},
		&contracts.GenerationParameters{TargetAudience: []contracts.Audience{contracts.AudienceProfessional}},
	)
	assert.Equal(t, []string{"inst"}, titles(out))
}

func TestApplyFilters_AbsentCriteriaSkipped(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())
	ideas := []contracts.InvestmentIdea{newIdea("A", 0.1), newIdea("B", 0.2)}

	out, criteria := engine.ApplyFilters(ideas, &contracts.GenerationParameters{})
	assert.Equal(t, []string{"A", "B"}, titles(out))
	assert.Empty(t, criteria)

	out, criteria = engine.ApplyFilters(ideas, nil)
	assert.Len(t, out, 2)
	assert.Empty(t, criteria)
}

func TestApplyFilters_SequentialCounts(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	lowShort := newIdea("low-short", 0.3)
	lowShort.TimeHorizon = contracts.HorizonIntraday
	okShort := newIdea("ok-short", 0.8)
	okShort.TimeHorizon = contracts.HorizonIntraday
	ok := newIdea("ok", 0.8)

	out, criteria := engine.ApplyFilters(
		[]contracts.InvestmentIdea{lowShort, okShort, ok},
		&contracts.GenerationParameters{
			MinimumConfidence: contracts.Float64(0.5),
			InvestmentHorizon: contracts.HorizonLong,
		},
	)

	assert.Equal(t, []string{"ok"}, titles(out))
	require.Len(t, criteria, 2)
	// low-short fails both, but is only counted by the first step
	assert.Equal(t, 1, criteria[0].AppliedCount)
	assert.Equal(t, 1, criteria[1].AppliedCount)
}

func TestApplyFilters_OrderMonotonicityIdempotence(t *testing.T) {
	engine := NewFilterEngine(logger.NewNop())

	ideas := make([]contracts.InvestmentIdea, 0)
	horizons := contracts.HorizonScale()
	for i := 0; i < 20; i++ {
		idea := newIdea(string(rune('a'+i)), float64(i)/20)
		idea.TimeHorizon = horizons[i%len(horizons)]
		if i%3 == 0 {
			idea.RiskLevel = contracts.RiskVeryHigh
		}
		if i%4 == 0 {
			idea.Investments[0].Sector = "healthcare"
		}
		ideas = append(ideas, idea)
	}
	original := make([]contracts.InvestmentIdea, len(ideas))
	copy(original, ideas)

	params := &contracts.GenerationParameters{
		MinimumConfidence: contracts.Float64(0.2),
		InvestmentHorizon: contracts.HorizonMedium,
		RiskTolerance:     contracts.ToleranceModerate,
		Sectors:           []string{"Technology"},
		TargetAudience:    []contracts.Audience{contracts.AudienceRetail},
	}

	once, _ := engine.ApplyFilters(ideas, params)
	twice, criteria := engine.ApplyFilters(once, params)

	assert.LessOrEqual(t, len(once), len(ideas))
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the set (-once +twice):\n%s", diff)
	}
	for _, c := range criteria {
		assert.Zero(t, c.AppliedCount, c.Criterion)
	}

	// survivors keep input order
	pos := make(map[string]int, len(ideas))
	for i, idea := range ideas {
		pos[idea.ID] = i
	}
	for i := 1; i < len(once); i++ {
		assert.Less(t, pos[once[i-1].ID], pos[once[i].ID])
	}

	if diff := cmp.Diff(original, ideas); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}
