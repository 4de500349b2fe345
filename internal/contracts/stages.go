package contracts

// Stage I/O 계약 (SSOT)
// 각 agent의 입력/출력 형식은 여기서만 정의

// StageContext is forwarded to analysis, compliance and synthesis
type StageContext struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Summary   string `json:"summary,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ---- Planning ----

// PlanningContext is the input of the planning stage
type PlanningContext struct {
	Objectives      []string            `json:"objectives"`
	UserPreferences UserPreferences     `json:"userPreferences"`
	Constraints     PlanningConstraints `json:"constraints"`
}

// UserPreferences is the normalized view of GenerationParameters
type UserPreferences struct {
	InvestmentHorizon   TimeHorizon      `json:"investmentHorizon,omitempty"`
	RiskTolerance       RiskTolerance    `json:"riskTolerance,omitempty"`
	Sectors             []string         `json:"sectors,omitempty"`
	AssetClasses        []InvestmentType `json:"assetClasses,omitempty"`
	Geography           []string         `json:"geography,omitempty"`
	ExcludedInvestments []string         `json:"excludedInvestments,omitempty"`
	TargetAudience      []Audience       `json:"targetAudience,omitempty"`
}

// PlanningConstraints bound the research plan
type PlanningConstraints struct {
	TimeLimitSeconds       int      `json:"timeLimit"`
	DataSourceRestrictions []string `json:"dataSourceRestrictions"`
	ComplianceRequirements []string `json:"complianceRequirements"`
}

// PlanningOutput is the research plan
type PlanningOutput struct {
	PlanID                   string     `json:"planId"`
	Tasks                    []PlanTask `json:"tasks"`
	ResearchDepth            string     `json:"researchDepth,omitempty"` // basic, standard, deep
	FocusAreas               []string   `json:"focusAreas,omitempty"`
	EstimatedDurationSeconds int        `json:"estimatedDuration,omitempty"`
}

// PlanTask is one task of the research plan
type PlanTask struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Agent       string   `json:"agent,omitempty"`
	DependsOn   []string `json:"dependsOn,omitempty"`
}

// ---- Research ----

// Research types
const (
	ResearchMarketTrends   = "market-trends"
	ResearchSectorAnalysis = "sector-analysis"
)

// ResearchRequest is one research sub-request
type ResearchRequest struct {
	Topic        string             `json:"topic"`
	ResearchType string             `json:"researchType"`
	Parameters   ResearchParameters `json:"parameters"`
}

// ResearchParameters configure one research sub-request
type ResearchParameters struct {
	Depth      string   `json:"depth"`
	Sources    []string `json:"sources"`
	Timeframe  string   `json:"timeframe"`
	MaxResults int      `json:"maxResults"`
	FocusAreas []string `json:"focusAreas,omitempty"`
}

// ResearchResult is the answer to one research sub-request
type ResearchResult struct {
	Topic        string            `json:"topic"`
	ResearchType string            `json:"researchType"`
	Findings     []ResearchFinding `json:"findings"`
	Investments  []Investment      `json:"investments"`
	Summary      string            `json:"summary,omitempty"`
	Confidence   float64           `json:"confidence,omitempty"`
}

// ResearchFinding is one piece of research evidence
type ResearchFinding struct {
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Source    string  `json:"source,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// ResearchOutput concatenates all sub-request results in request order
type ResearchOutput struct {
	Results []ResearchResult `json:"results"`
}

// Findings returns every finding across results, in order
func (r *ResearchOutput) Findings() []ResearchFinding {
	findings := make([]ResearchFinding, 0)
	for _, res := range r.Results {
		findings = append(findings, res.Findings...)
	}
	return findings
}

// Investments returns every candidate investment across results, in order
func (r *ResearchOutput) Investments() []Investment {
	investments := make([]Investment, 0)
	for _, res := range r.Results {
		investments = append(investments, res.Investments...)
	}
	return investments
}

// ---- Analysis ----

// AnalysisTypeComprehensive is the only analysis type the pipeline requests
const AnalysisTypeComprehensive = "comprehensive"

// AnalysisRequest is the input of the analysis stage
type AnalysisRequest struct {
	Investments  []Investment       `json:"investments"`
	AnalysisType string             `json:"analysisType"`
	Parameters   AnalysisParameters `json:"parameters"`
	Context      StageContext       `json:"context"`
}

// AnalysisParameters configure the analysis
type AnalysisParameters struct {
	TimeHorizon          TimeHorizon   `json:"timeHorizon,omitempty"`
	RiskTolerance        RiskTolerance `json:"riskTolerance,omitempty"`
	IncludeStressTesting bool          `json:"includeStressTesting"`
	ConfidenceLevel      float64       `json:"confidenceLevel"`
}

// AnalysisOutput is the result of the analysis stage
type AnalysisOutput struct {
	Analyses   []InvestmentAnalysis `json:"analyses"`
	Summary    string               `json:"summary,omitempty"`
	Confidence float64              `json:"confidence,omitempty"`
}

// InvestmentAnalysis is the analysis of one investment
type InvestmentAnalysis struct {
	Investment     Investment `json:"investment"`
	ExpectedReturn float64    `json:"expectedReturn"`
	Volatility     float64    `json:"volatility"`
	RiskScore      float64    `json:"riskScore"`
	Recommendation string     `json:"recommendation,omitempty"`
	Summary        string     `json:"summary,omitempty"`
}

// Investments returns the analyzed investments in order
func (a *AnalysisOutput) Investments() []Investment {
	investments := make([]Investment, 0, len(a.Analyses))
	for _, an := range a.Analyses {
		investments = append(investments, an.Investment)
	}
	return investments
}

// ---- Compliance ----

// ComplianceRequestType is the only compliance request type the pipeline sends
const ComplianceRequestType = "compliance-check"

// ComplianceRequest is the input of the compliance stage
type ComplianceRequest struct {
	Investments []Investment         `json:"investments"`
	RequestType string               `json:"requestType"`
	Parameters  ComplianceParameters `json:"parameters"`
	Context     StageContext         `json:"context"`
}

// ComplianceParameters configure the compliance check
type ComplianceParameters struct {
	Jurisdictions     []string      `json:"jurisdictions"`
	RiskTolerance     RiskTolerance `json:"riskTolerance,omitempty"`
	InvestmentHorizon TimeHorizon   `json:"investmentHorizon,omitempty"`
	IncludeESG        bool          `json:"includeESG"`
}

// ComplianceOutput is the result of the compliance stage
type ComplianceOutput struct {
	Checks  []ComplianceCheck `json:"checks"`
	Summary string            `json:"summary,omitempty"`
}

// ComplianceCheck is the verdict for one investment
type ComplianceCheck struct {
	Investment string   `json:"investment"`
	Compliant  bool     `json:"compliant"`
	Issues     []string `json:"issues,omitempty"`
	ESGScore   float64  `json:"esgScore,omitempty"`
}

// ---- Synthesis ----

// Synthesis output settings sent by the pipeline
const (
	SynthesisOutputDetailed = "detailed"
)

// SynthesisRequest is the input of the synthesis stage
type SynthesisRequest struct {
	AnalysisResults       *AnalysisOutput   `json:"analysisResults"`
	ResearchFindings      []ResearchFinding `json:"researchFindings"`
	ComplianceChecks      []ComplianceCheck `json:"complianceChecks"`
	UserPreferences       UserPreferences   `json:"userPreferences"`
	OutputFormat          string            `json:"outputFormat"`
	IncludeVisualizations bool              `json:"includeVisualizations"`
	Context               StageContext      `json:"context"`
}

// SynthesisOutput is the result of the synthesis stage
type SynthesisOutput struct {
	InvestmentIdeas []SynthesizedIdea `json:"investmentIdeas"`
	Summary         string            `json:"summary,omitempty"`
	Confidence      float64           `json:"confidence,omitempty"`
}

// SynthesizedIdea is an idea as returned by synthesis, before defaults are applied
type SynthesizedIdea struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Investments       []Investment      `json:"investments"`
	Rationale         string            `json:"rationale"`
	Strategy          Strategy          `json:"strategy,omitempty"`
	TimeHorizon       TimeHorizon       `json:"timeHorizon,omitempty"`
	ConfidenceScore   *float64          `json:"confidenceScore,omitempty"`
	PotentialOutcomes []OutcomeScenario `json:"potentialOutcomes,omitempty"`
	RiskLevel         RiskLevel         `json:"riskLevel,omitempty"`
	TargetAudience    []Audience        `json:"targetAudience,omitempty"`
	Metadata          IdeaMetadata      `json:"metadata"`
	Tags              []string          `json:"tags,omitempty"`
}
