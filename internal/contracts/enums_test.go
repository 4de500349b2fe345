package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHorizonDistance(t *testing.T) {
	tests := []struct {
		name   string
		a, b   TimeHorizon
		want   int
		wantOK bool
	}{
		{"same", HorizonMedium, HorizonMedium, 0, true},
		{"one step", HorizonMedium, HorizonShort, 1, true},
		{"two steps", HorizonLong, HorizonShort, 2, true},
		{"symmetric", HorizonShort, HorizonLong, 2, true},
		{"full scale", HorizonIntraday, HorizonVeryLong, 4, true},
		{"off scale", TimeHorizon("forever"), HorizonShort, 0, false},
		{"empty", "", HorizonShort, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HorizonDistance(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHorizonScale_Copy(t *testing.T) {
	scale := HorizonScale()
	scale[0] = "mutated"

	idx, ok := HorizonIntraday.Index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRiskLevel_Score(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  float64
	}{
		{RiskVeryLow, 0.2},
		{RiskLow, 0.4},
		{RiskModerate, 0.6},
		{RiskHigh, 0.8},
		{RiskVeryHigh, 1.0},
		{RiskLevel("unknown"), 0.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.level.Score(), 1e-9)
		})
	}
}

func TestRiskTolerance_Allows(t *testing.T) {
	tests := []struct {
		tolerance RiskTolerance
		level     RiskLevel
		want      bool
	}{
		{ToleranceConservative, RiskVeryLow, true},
		{ToleranceConservative, RiskLow, true},
		{ToleranceConservative, RiskModerate, false},
		{ToleranceModerate, RiskLow, true},
		{ToleranceModerate, RiskHigh, true},
		{ToleranceModerate, RiskVeryHigh, false},
		{ToleranceModerate, RiskVeryLow, false},
		{ToleranceAggressive, RiskModerate, true},
		{ToleranceAggressive, RiskVeryHigh, true},
		{ToleranceAggressive, RiskLow, false},
		{RiskTolerance("reckless"), RiskHigh, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tolerance)+"/"+string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tolerance.Allows(tt.level))
		})
	}
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Technology", " technology "))
	assert.False(t, EqualFold("Technology", "Energy"))
}
