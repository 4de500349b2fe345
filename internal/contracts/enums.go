package contracts

import "strings"

// TimeHorizon is the holding period an idea targets
// ⭐ SSOT: 투자 기간 스케일은 여기서만 정의
type TimeHorizon string

const (
	HorizonIntraday TimeHorizon = "intraday"
	HorizonShort    TimeHorizon = "short"
	HorizonMedium   TimeHorizon = "medium"
	HorizonLong     TimeHorizon = "long"
	HorizonVeryLong TimeHorizon = "very-long"
)

// horizonScale is the ordered 5-point scale used for compatibility and scoring
var horizonScale = []TimeHorizon{
	HorizonIntraday,
	HorizonShort,
	HorizonMedium,
	HorizonLong,
	HorizonVeryLong,
}

// HorizonScale returns the ordered horizon scale (shortest first)
func HorizonScale() []TimeHorizon {
	scale := make([]TimeHorizon, len(horizonScale))
	copy(scale, horizonScale)
	return scale
}

// Index returns the position of the horizon on the scale
func (h TimeHorizon) Index() (int, bool) {
	for i, s := range horizonScale {
		if s == h {
			return i, true
		}
	}
	return -1, false
}

// IsValid checks if the horizon is on the scale
func (h TimeHorizon) IsValid() bool {
	_, ok := h.Index()
	return ok
}

// HorizonDistance returns |index(a) - index(b)| on the 5-point scale.
// ok is false when either horizon is off the scale.
func HorizonDistance(a, b TimeHorizon) (int, bool) {
	ia, okA := a.Index()
	ib, okB := b.Index()
	if !okA || !okB {
		return 0, false
	}
	d := ia - ib
	if d < 0 {
		d = -d
	}
	return d, true
}

// RiskTolerance is the caller's appetite for risk
type RiskTolerance string

const (
	ToleranceConservative RiskTolerance = "conservative"
	ToleranceModerate     RiskTolerance = "moderate"
	ToleranceAggressive   RiskTolerance = "aggressive"
)

// IsValid checks if the tolerance is known
func (t RiskTolerance) IsValid() bool {
	switch t {
	case ToleranceConservative, ToleranceModerate, ToleranceAggressive:
		return true
	}
	return false
}

// AllowedRiskLevels returns the idea risk levels compatible with the tolerance
func (t RiskTolerance) AllowedRiskLevels() []RiskLevel {
	switch t {
	case ToleranceConservative:
		return []RiskLevel{RiskVeryLow, RiskLow}
	case ToleranceModerate:
		return []RiskLevel{RiskLow, RiskModerate, RiskHigh}
	case ToleranceAggressive:
		return []RiskLevel{RiskModerate, RiskHigh, RiskVeryHigh}
	default:
		return nil
	}
}

// Allows checks if an idea risk level is compatible with the tolerance
func (t RiskTolerance) Allows(level RiskLevel) bool {
	for _, allowed := range t.AllowedRiskLevels() {
		if allowed == level {
			return true
		}
	}
	return false
}

// RiskLevel is the risk classification of an idea
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very-low"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very-high"
)

// neutralRiskScore is used for risk levels outside the known set
const neutralRiskScore = 0.5

// Score returns the ordinal risk score (0.2 ~ 1.0)
func (r RiskLevel) Score() float64 {
	switch r {
	case RiskVeryLow:
		return 0.2
	case RiskLow:
		return 0.4
	case RiskModerate:
		return 0.6
	case RiskHigh:
		return 0.8
	case RiskVeryHigh:
		return 1.0
	default:
		return neutralRiskScore
	}
}

// IsValid checks if the risk level is known
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskVeryLow, RiskLow, RiskModerate, RiskHigh, RiskVeryHigh:
		return true
	}
	return false
}

// Strategy is the trade direction/style of an idea
type Strategy string

const (
	StrategyBuy   Strategy = "buy"
	StrategySell  Strategy = "sell"
	StrategyHold  Strategy = "hold"
	StrategyShort Strategy = "short"
	StrategyLong  Strategy = "long"
	StrategyPairs Strategy = "pairs"
	StrategyOther Strategy = "other"
)

// Audience is a target investor segment
type Audience string

const (
	AudienceRetail        Audience = "retail"
	AudienceInstitutional Audience = "institutional"
	AudienceAccredited    Audience = "accredited"
	AudienceProfessional  Audience = "professional"
	AudienceHighNetWorth  Audience = "high-net-worth"
)

// IsValid checks if the audience is known
func (a Audience) IsValid() bool {
	switch a {
	case AudienceRetail, AudienceInstitutional, AudienceAccredited, AudienceProfessional, AudienceHighNetWorth:
		return true
	}
	return false
}

// InvestmentType is the asset class of a single investment
type InvestmentType string

const (
	TypeStock          InvestmentType = "stock"
	TypeBond           InvestmentType = "bond"
	TypeETF            InvestmentType = "etf"
	TypeMutualFund     InvestmentType = "mutual-fund"
	TypeREIT           InvestmentType = "reit"
	TypeCommodity      InvestmentType = "commodity"
	TypeCryptocurrency InvestmentType = "cryptocurrency"
	TypeOption         InvestmentType = "option"
	TypeFuture         InvestmentType = "future"
	TypeForex          InvestmentType = "forex"
	TypeOther          InvestmentType = "other"
)

// MarketTrend is the broad market direction at generation time
type MarketTrend string

const (
	TrendBullish  MarketTrend = "bullish"
	TrendBearish  MarketTrend = "bearish"
	TrendSideways MarketTrend = "sideways"
)

// GeopoliticalRisk is the geopolitical risk level at generation time
type GeopoliticalRisk string

const (
	GeopoliticalLow    GeopoliticalRisk = "low"
	GeopoliticalMedium GeopoliticalRisk = "medium"
	GeopoliticalHigh   GeopoliticalRisk = "high"
)

// NormalizeTag lower-cases and trims a free-form tag for matching
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EqualFold reports whether two free-form tags match (case-insensitive, trimmed)
func EqualFold(a, b string) bool {
	return NormalizeTag(a) == NormalizeTag(b)
}
