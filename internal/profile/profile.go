package profile

import (
	"github.com/wonny/aegis-ideas/internal/contracts"
)

// Profile is a saved generation request, loaded from YAML
// ⭐ SSOT: 예약 생성 요청 형식은 여기서만 정의
//
// yaml 태그 = 파일 형식, json 태그 = 해시용 canonical 형식
type Profile struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	UserID     string     `yaml:"user_id" json:"user_id"`
	Parameters Parameters `yaml:"parameters" json:"parameters"`
	Context    *Context   `yaml:"context,omitempty" json:"context,omitempty"`
}

// Meta identifies the profile and its schedule
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   int    `yaml:"version" json:"version"`
	Schedule  string `yaml:"schedule,omitempty" json:"schedule,omitempty"` // cron with seconds, empty = manual only
}

// Parameters mirror contracts.GenerationParameters
type Parameters struct {
	InvestmentHorizon   string   `yaml:"investment_horizon,omitempty" json:"investment_horizon,omitempty"`
	RiskTolerance       string   `yaml:"risk_tolerance,omitempty" json:"risk_tolerance,omitempty"`
	Sectors             []string `yaml:"sectors,omitempty" json:"sectors,omitempty"`
	AssetClasses        []string `yaml:"asset_classes,omitempty" json:"asset_classes,omitempty"`
	Geography           []string `yaml:"geography,omitempty" json:"geography,omitempty"`
	ExcludedInvestments []string `yaml:"excluded_investments,omitempty" json:"excluded_investments,omitempty"`
	MinimumConfidence   *float64 `yaml:"minimum_confidence,omitempty" json:"minimum_confidence,omitempty"`
	MaximumIdeas        *int     `yaml:"maximum_ideas,omitempty" json:"maximum_ideas,omitempty"`
	TargetAudience      []string `yaml:"target_audience,omitempty" json:"target_audience,omitempty"`
}

// Context mirrors contracts.GenerationContext
type Context struct {
	Jurisdictions []string `yaml:"jurisdictions,omitempty" json:"jurisdictions,omitempty"`
	IncludeESG    *bool    `yaml:"include_esg,omitempty" json:"include_esg,omitempty"`
	MarketView    string   `yaml:"market_view,omitempty" json:"market_view,omitempty"`
	Notes         string   `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// GenerationParameters converts the profile parameters
func (p *Profile) GenerationParameters() contracts.GenerationParameters {
	params := contracts.GenerationParameters{
		InvestmentHorizon:   contracts.TimeHorizon(p.Parameters.InvestmentHorizon),
		RiskTolerance:       contracts.RiskTolerance(p.Parameters.RiskTolerance),
		Sectors:             append([]string(nil), p.Parameters.Sectors...),
		Geography:           append([]string(nil), p.Parameters.Geography...),
		ExcludedInvestments: append([]string(nil), p.Parameters.ExcludedInvestments...),
	}

	for _, c := range p.Parameters.AssetClasses {
		params.AssetClasses = append(params.AssetClasses, contracts.InvestmentType(c))
	}
	for _, a := range p.Parameters.TargetAudience {
		params.TargetAudience = append(params.TargetAudience, contracts.Audience(a))
	}
	if v := p.Parameters.MinimumConfidence; v != nil {
		params.MinimumConfidence = contracts.Float64(*v)
	}
	if v := p.Parameters.MaximumIdeas; v != nil {
		params.MaximumIdeas = contracts.Int(*v)
	}

	return params
}

// Request builds a generation request for one run of the profile
func (p *Profile) Request(requestID string) *contracts.GenerationRequest {
	req := &contracts.GenerationRequest{
		UserID:     p.UserID,
		RequestID:  requestID,
		Parameters: p.GenerationParameters(),
	}

	if p.Context != nil {
		req.Context = &contracts.GenerationContext{
			Jurisdictions: append([]string(nil), p.Context.Jurisdictions...),
			MarketView:    p.Context.MarketView,
			Notes:         p.Context.Notes,
		}
		if p.Context.IncludeESG != nil {
			req.Context.IncludeESG = contracts.Bool(*p.Context.IncludeESG)
		}
	}

	return req
}
