package contracts

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned by GenerationParameters.Validate
var ErrInvalidParameters = errors.New("invalid generation parameters")

// GenerationRequest is one caller submission to the pipeline
// ⭐ SSOT: 파이프라인 입력 (run 동안 불변)
type GenerationRequest struct {
	UserID     string               `json:"userId"`
	RequestID  string               `json:"requestId"`
	Parameters GenerationParameters `json:"parameters"`
	Context    *GenerationContext   `json:"context,omitempty"`
}

// GenerationContext carries optional caller context forwarded to the stages
type GenerationContext struct {
	Jurisdictions []string `json:"jurisdictions,omitempty"`
	IncludeESG    *bool    `json:"includeESG,omitempty"`
	MarketView    string   `json:"marketView,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// GenerationParameters are the caller's preferences.
// Zero values mean "not supplied": empty strings/lists and nil pointers skip the criterion.
type GenerationParameters struct {
	InvestmentHorizon   TimeHorizon      `json:"investmentHorizon,omitempty"`
	RiskTolerance       RiskTolerance    `json:"riskTolerance,omitempty"`
	Sectors             []string         `json:"sectors,omitempty"`
	AssetClasses        []InvestmentType `json:"assetClasses,omitempty"`
	Geography           []string         `json:"geography,omitempty"`
	ExcludedInvestments []string         `json:"excludedInvestments,omitempty"`
	MinimumConfidence   *float64         `json:"minimumConfidence,omitempty"`
	MaximumIdeas        *int             `json:"maximumIdeas,omitempty"`
	TargetAudience      []Audience       `json:"targetAudience,omitempty"`
}

// DefaultMaximumIdeas is used when MaximumIdeas is not supplied
const DefaultMaximumIdeas = 10

// MaxIdeas returns the idea cap (MaximumIdeas or the default)
func (p *GenerationParameters) MaxIdeas() int {
	if p.MaximumIdeas == nil {
		return DefaultMaximumIdeas
	}
	return *p.MaximumIdeas
}

// Validate checks parameter shape before a request is submitted.
// The orchestrator itself never validates; callers (API, profiles, CLI) do.
func (p *GenerationParameters) Validate() error {
	if p.InvestmentHorizon != "" && !p.InvestmentHorizon.IsValid() {
		return fmt.Errorf("%w: investmentHorizon %q", ErrInvalidParameters, p.InvestmentHorizon)
	}
	if p.RiskTolerance != "" && !p.RiskTolerance.IsValid() {
		return fmt.Errorf("%w: riskTolerance %q", ErrInvalidParameters, p.RiskTolerance)
	}
	if p.MinimumConfidence != nil {
		if c := *p.MinimumConfidence; c < 0 || c > 1 {
			return fmt.Errorf("%w: minimumConfidence %.2f out of [0,1]", ErrInvalidParameters, c)
		}
	}
	if p.MaximumIdeas != nil && *p.MaximumIdeas < 1 {
		return fmt.Errorf("%w: maximumIdeas must be >= 1", ErrInvalidParameters)
	}
	for _, a := range p.TargetAudience {
		if !a.IsValid() {
			return fmt.Errorf("%w: targetAudience %q", ErrInvalidParameters, a)
		}
	}
	return nil
}

// Float64 returns a pointer to v (for optional parameters)
func Float64(v float64) *float64 {
	return &v
}

// Int returns a pointer to v (for optional parameters)
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}
