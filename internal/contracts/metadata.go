package contracts

// Filter criterion names, in application order
const (
	CriterionMinimumConfidence   = "minimumConfidence"
	CriterionTimeHorizon         = "timeHorizon"
	CriterionRiskTolerance       = "riskTolerance"
	CriterionSectors             = "sectors"
	CriterionAssetClasses        = "assetClasses"
	CriterionExcludedInvestments = "excludedInvestments"
	CriterionTargetAudience      = "targetAudience"
)

// CriterionType tells whether a criterion keeps or drops matches
type CriterionType string

const (
	CriterionInclusion CriterionType = "inclusion"
	CriterionExclusion CriterionType = "exclusion"
)

// FilterCriteria records one applied filter step.
// AppliedCount is measured against the set entering that step (sequential attribution).
type FilterCriteria struct {
	Criterion    string        `json:"criterion"`
	Type         CriterionType `json:"type"`
	Value        interface{}   `json:"value"`
	AppliedCount int           `json:"appliedCount"`
}

// Confidence band thresholds
const (
	HighConfidenceThreshold   = 0.8 // > 0.8
	MediumConfidenceThreshold = 0.5 // 0.5 ~ 0.8
)

// ConfidenceDistribution summarizes confidence over the final ranked set
type ConfidenceDistribution struct {
	High    int     `json:"high"`
	Medium  int     `json:"medium"`
	Low     int     `json:"low"`
	Average float64 `json:"average"`
}

// Total returns the number of ideas counted
func (d ConfidenceDistribution) Total() int {
	return d.High + d.Medium + d.Low
}

// GenerationMetadata aggregates per-run bookkeeping
type GenerationMetadata struct {
	TotalIdeasGenerated    int                    `json:"totalIdeasGenerated"`
	TotalIdeasFiltered     int                    `json:"totalIdeasFiltered"`
	FilteringCriteria      []FilterCriteria       `json:"filteringCriteria"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidenceDistribution"`
	ProcessingSteps        []ProcessingStep       `json:"processingSteps"`
}

// ProcessingMetrics holds timing and volume metrics of one run
type ProcessingMetrics struct {
	TotalProcessingTimeMs int64           `json:"totalProcessingTimeMs"`
	PhaseDurationsMs      map[Phase]int64 `json:"phaseDurationsMs"`
	ResearchRequests      int             `json:"researchRequests"`
	DataPointsProcessed   int             `json:"dataPointsProcessed"`
	IdeasPersisted        int             `json:"ideasPersisted"`
}

// IdeaGenerationResult is the pipeline output returned to the caller
type IdeaGenerationResult struct {
	RequestID         string                 `json:"requestId"`
	Ideas             []RankedInvestmentIdea `json:"ideas"`
	Metadata          GenerationMetadata     `json:"metadata"`
	ProcessingMetrics ProcessingMetrics      `json:"processingMetrics"`
}
