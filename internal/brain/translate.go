package brain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// Stage request translation rules (deterministic, no I/O)

const (
	planningTimeLimitSeconds = 300
	suitabilityRequirement   = "suitability"

	defaultResearchDepth     = "standard"
	defaultResearchTimeframe = "1y"
	researchMaxResults       = 10
	defaultTopicHorizon      = contracts.HorizonMedium
	analysisConfidenceLevel  = 0.95
	includeStressTesting     = true
	synthesisVisualizations  = true
)

var researchSources = []string{"market-data", "news", "financial-statements"}

// researchTimeframes maps the requested horizon to the research lookback
var researchTimeframes = map[contracts.TimeHorizon]string{
	contracts.HorizonIntraday: "1d",
	contracts.HorizonShort:    "3m",
	contracts.HorizonMedium:   "1y",
	contracts.HorizonLong:     "5y",
	contracts.HorizonVeryLong: "10y",
}

// jurisdictionsFor returns the request's jurisdictions or the configured default
func jurisdictionsFor(req *contracts.GenerationRequest, defaults []string) []string {
	if req.Context != nil && len(req.Context.Jurisdictions) > 0 {
		return append([]string(nil), req.Context.Jurisdictions...)
	}
	if len(defaults) > 0 {
		return append([]string(nil), defaults...)
	}
	return []string{"US"}
}

// includeESGFor returns the context flag (default true)
func includeESGFor(req *contracts.GenerationRequest) bool {
	if req.Context != nil && req.Context.IncludeESG != nil {
		return *req.Context.IncludeESG
	}
	return true
}

// normalizeTags trims, lower-cases, de-duplicates and sorts free-form tags
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		k := contracts.NormalizeTag(t)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// buildUserPreferences is the normalized copy of the parameters handed to the stages
func buildUserPreferences(p *contracts.GenerationParameters) contracts.UserPreferences {
	classes := make([]string, len(p.AssetClasses))
	for i, c := range p.AssetClasses {
		classes[i] = string(c)
	}
	audiences := make([]string, len(p.TargetAudience))
	for i, a := range p.TargetAudience {
		audiences[i] = string(a)
	}

	prefs := contracts.UserPreferences{
		InvestmentHorizon:   p.InvestmentHorizon,
		RiskTolerance:       p.RiskTolerance,
		Sectors:             normalizeTags(p.Sectors),
		Geography:           normalizeTags(p.Geography),
		ExcludedInvestments: normalizeTags(p.ExcludedInvestments),
	}
	for _, c := range normalizeTags(classes) {
		prefs.AssetClasses = append(prefs.AssetClasses, contracts.InvestmentType(c))
	}
	for _, a := range normalizeTags(audiences) {
		prefs.TargetAudience = append(prefs.TargetAudience, contracts.Audience(a))
	}
	return prefs
}

// buildPlanningContext derives objectives, preferences and constraints from the request
func buildPlanningContext(req *contracts.GenerationRequest, defaultJurisdictions []string) *contracts.PlanningContext {
	p := &req.Parameters
	prefs := buildUserPreferences(p)

	objectives := []string{
		fmt.Sprintf("Generate up to %d investment ideas", p.MaxIdeas()),
	}
	if p.InvestmentHorizon != "" {
		objectives = append(objectives, fmt.Sprintf("Target a %s investment horizon", p.InvestmentHorizon))
	}
	if p.RiskTolerance != "" {
		objectives = append(objectives, fmt.Sprintf("Match a %s risk tolerance", p.RiskTolerance))
	}
	if len(prefs.Sectors) > 0 {
		objectives = append(objectives, "Focus on sectors: "+strings.Join(prefs.Sectors, ", "))
	}
	if len(prefs.AssetClasses) > 0 {
		classes := make([]string, len(prefs.AssetClasses))
		for i, c := range prefs.AssetClasses {
			classes[i] = string(c)
		}
		objectives = append(objectives, "Consider asset classes: "+strings.Join(classes, ", "))
	}
	if len(prefs.Geography) > 0 {
		objectives = append(objectives, "Cover geography: "+strings.Join(prefs.Geography, ", "))
	}
	if len(prefs.TargetAudience) > 0 {
		audiences := make([]string, len(prefs.TargetAudience))
		for i, a := range prefs.TargetAudience {
			audiences[i] = string(a)
		}
		objectives = append(objectives, "Suit audience: "+strings.Join(audiences, ", "))
	}
	if req.Context != nil && req.Context.MarketView != "" {
		objectives = append(objectives, "Reflect market view: "+req.Context.MarketView)
	}

	requirements := jurisdictionsFor(req, defaultJurisdictions)
	requirements = append(requirements, suitabilityRequirement)

	return &contracts.PlanningContext{
		Objectives:      objectives,
		UserPreferences: prefs,
		Constraints: contracts.PlanningConstraints{
			TimeLimitSeconds:       planningTimeLimitSeconds,
			DataSourceRestrictions: []string{},
			ComplianceRequirements: requirements,
		},
	}
}

// buildResearchRequests returns the generic market-trends request followed by
// one sector-analysis request per requested sector (input order, duplicates removed)
func buildResearchRequests(plan *contracts.PlanningOutput, p *contracts.GenerationParameters) []*contracts.ResearchRequest {
	depth := plan.ResearchDepth
	if depth == "" {
		depth = defaultResearchDepth
	}
	timeframe, ok := researchTimeframes[p.InvestmentHorizon]
	if !ok {
		timeframe = defaultResearchTimeframe
	}
	horizon := p.InvestmentHorizon
	if horizon == "" {
		horizon = defaultTopicHorizon
	}

	params := func(focus []string) contracts.ResearchParameters {
		return contracts.ResearchParameters{
			Depth:      depth,
			Sources:    append([]string(nil), researchSources...),
			Timeframe:  timeframe,
			MaxResults: researchMaxResults,
			FocusAreas: focus,
		}
	}

	requests := []*contracts.ResearchRequest{
		{
			Topic:        fmt.Sprintf("Market trends for %s horizon investments", horizon),
			ResearchType: contracts.ResearchMarketTrends,
			Parameters:   params(append([]string(nil), plan.FocusAreas...)),
		},
	}

	seen := make(map[string]struct{}, len(p.Sectors))
	for _, sector := range p.Sectors {
		key := contracts.NormalizeTag(sector)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		sector = strings.TrimSpace(sector)
		requests = append(requests, &contracts.ResearchRequest{
			Topic:        fmt.Sprintf("Sector analysis: %s", sector),
			ResearchType: contracts.ResearchSectorAnalysis,
			Parameters:   params([]string{sector}),
		})
	}

	return requests
}

// investmentKey identifies an investment by ticker, falling back to name
func investmentKey(inv contracts.Investment) string {
	if k := contracts.NormalizeTag(inv.Ticker); k != "" {
		return "t:" + k
	}
	return "n:" + contracts.NormalizeTag(inv.Name)
}

// dedupeInvestments keeps the first occurrence of each investment
func dedupeInvestments(investments []contracts.Investment) []contracts.Investment {
	seen := make(map[string]struct{}, len(investments))
	out := make([]contracts.Investment, 0, len(investments))
	for _, inv := range investments {
		k := investmentKey(inv)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, inv)
	}
	return out
}

// researchSummary condenses the research results for downstream context
func researchSummary(research *contracts.ResearchOutput) string {
	parts := make([]string, 0, len(research.Results))
	for _, r := range research.Results {
		if r.Summary != "" {
			parts = append(parts, r.Summary)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d research results, %d findings", len(research.Results), len(research.Findings()))
	}
	return strings.Join(parts, " ")
}

func stageContext(req *contracts.GenerationRequest, summary string) contracts.StageContext {
	sc := contracts.StageContext{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Summary:   summary,
	}
	if req.Context != nil {
		sc.Notes = req.Context.Notes
	}
	return sc
}

func buildAnalysisRequest(req *contracts.GenerationRequest, research *contracts.ResearchOutput) *contracts.AnalysisRequest {
	return &contracts.AnalysisRequest{
		Investments:  dedupeInvestments(research.Investments()),
		AnalysisType: contracts.AnalysisTypeComprehensive,
		Parameters: contracts.AnalysisParameters{
			TimeHorizon:          req.Parameters.InvestmentHorizon,
			RiskTolerance:        req.Parameters.RiskTolerance,
			IncludeStressTesting: includeStressTesting,
			ConfidenceLevel:      analysisConfidenceLevel,
		},
		Context: stageContext(req, researchSummary(research)),
	}
}

func buildComplianceRequest(
	req *contracts.GenerationRequest,
	research *contracts.ResearchOutput,
	analysis *contracts.AnalysisOutput,
	defaultJurisdictions []string,
) *contracts.ComplianceRequest {
	investments := analysis.Investments()
	if len(investments) == 0 {
		investments = research.Investments()
	}

	return &contracts.ComplianceRequest{
		Investments: dedupeInvestments(investments),
		RequestType: contracts.ComplianceRequestType,
		Parameters: contracts.ComplianceParameters{
			Jurisdictions:     jurisdictionsFor(req, defaultJurisdictions),
			RiskTolerance:     req.Parameters.RiskTolerance,
			InvestmentHorizon: req.Parameters.InvestmentHorizon,
			IncludeESG:        includeESGFor(req),
		},
		Context: stageContext(req, analysis.Summary),
	}
}

func buildSynthesisRequest(
	req *contracts.GenerationRequest,
	research *contracts.ResearchOutput,
	analysis *contracts.AnalysisOutput,
	compliance *contracts.ComplianceOutput,
) *contracts.SynthesisRequest {
	return &contracts.SynthesisRequest{
		AnalysisResults:       analysis,
		ResearchFindings:      research.Findings(),
		ComplianceChecks:      append([]contracts.ComplianceCheck(nil), compliance.Checks...),
		UserPreferences:       buildUserPreferences(&req.Parameters),
		OutputFormat:          contracts.SynthesisOutputDetailed,
		IncludeVisualizations: synthesisVisualizations,
		Context:               stageContext(req, compliance.Summary),
	}
}
