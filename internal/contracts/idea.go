package contracts

import "time"

// InvestmentIdea is a persisted draft idea produced by synthesis
// ⭐ SSOT: Synthesis → Repository → Filter/Ranker 전달 형식
type InvestmentIdea struct {
	ID                string            `json:"id"`
	Version           int               `json:"version"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Investments       []Investment      `json:"investments"`
	Rationale         string            `json:"rationale"`
	Strategy          Strategy          `json:"strategy"`
	TimeHorizon       TimeHorizon       `json:"timeHorizon"`
	ConfidenceScore   float64           `json:"confidenceScore"` // 0.0 ~ 1.0
	PotentialOutcomes []OutcomeScenario `json:"potentialOutcomes"`
	RiskLevel         RiskLevel         `json:"riskLevel"`
	TargetAudience    []Audience        `json:"targetAudience"`
	Metadata          IdeaMetadata      `json:"metadata"`
	Tags              []string          `json:"tags,omitempty"`
	CreatedBy         string            `json:"createdBy"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Investment is a single constituent of an idea
type Investment struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Ticker      string         `json:"ticker,omitempty"`
	Type        InvestmentType `json:"type"`
	Sector      string         `json:"sector,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Scenario names used in PotentialOutcomes
const (
	ScenarioBest     = "best"
	ScenarioExpected = "expected"
	ScenarioWorst    = "worst"
)

// OutcomeScenario is one potential outcome of an idea
type OutcomeScenario struct {
	Scenario          string  `json:"scenario"`
	Probability       float64 `json:"probability"`
	ReturnEstimate    float64 `json:"returnEstimate"`                // 0.12 = 12%
	TimeToRealization int     `json:"timeToRealization,omitempty"` // days
	Description       string  `json:"description,omitempty"`
}

// IdeaMetadata holds generation-time scores and the market snapshot
type IdeaMetadata struct {
	SourceModels                 []string         `json:"sourceModels,omitempty"`
	QualityScore                 float64          `json:"qualityScore"` // 0 ~ 100
	NoveltyScore                 float64          `json:"noveltyScore"` // 0 ~ 100
	MarketConditionsAtGeneration MarketConditions `json:"marketConditionsAtGeneration"`
}

// MarketConditions is the market-data snapshot taken when the idea was generated
type MarketConditions struct {
	MarketTrend             MarketTrend      `json:"marketTrend,omitempty"`
	GeopoliticalRisk        GeopoliticalRisk `json:"geopoliticalRisk,omitempty"`
	VolatilityIndex         float64          `json:"volatilityIndex,omitempty"`
	InterestRateEnvironment string           `json:"interestRateEnvironment,omitempty"`
}

// ExpectedReturn returns the return estimate of the "expected" scenario
func (i *InvestmentIdea) ExpectedReturn() (float64, bool) {
	for _, o := range i.PotentialOutcomes {
		if o.Scenario == ScenarioExpected {
			return o.ReturnEstimate, true
		}
	}
	return 0, false
}

// HasAudience checks if any of the idea's audience tags is in the list
func (i *InvestmentIdea) HasAudience(audiences []Audience) bool {
	for _, mine := range i.TargetAudience {
		for _, want := range audiences {
			if EqualFold(string(mine), string(want)) {
				return true
			}
		}
	}
	return false
}

// CreateIdeaRequest is the payload handed to the idea repository
type CreateIdeaRequest struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Investments       []Investment      `json:"investments"`
	Rationale         string            `json:"rationale"`
	Strategy          Strategy          `json:"strategy"`
	TimeHorizon       TimeHorizon       `json:"timeHorizon"`
	ConfidenceScore   float64           `json:"confidenceScore"`
	PotentialOutcomes []OutcomeScenario `json:"potentialOutcomes"`
	RiskLevel         RiskLevel         `json:"riskLevel"`
	TargetAudience    []Audience        `json:"targetAudience"`
	Metadata          IdeaMetadata      `json:"metadata"`
	Tags              []string          `json:"tags,omitempty"`
	CreatedBy         string            `json:"createdBy"`
}
