package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/selection"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

var errAgentDown = errors.New("agent unavailable")

// fakeAgents implements all five stage interfaces and records what it was sent
type fakeAgents struct {
	mu sync.Mutex

	calls []contracts.Phase

	planningContext *contracts.PlanningContext
	plan            *contracts.PlanningOutput
	planErr         error
	planHook        func()

	researchRequests []*contracts.ResearchRequest
	researchFn       func(req *contracts.ResearchRequest) (*contracts.ResearchResult, error)

	analysisRequest *contracts.AnalysisRequest
	analysisErr     error

	complianceRequest *contracts.ComplianceRequest
	complianceErr     error

	synthesisRequest *contracts.SynthesisRequest
	synthesis        *contracts.SynthesisOutput
	synthesisErr     error
}

func newFakeAgents() *fakeAgents {
	return &fakeAgents{
		plan: &contracts.PlanningOutput{
			PlanID:        "plan-1",
			ResearchDepth: "deep",
			FocusAreas:    []string{"rates", "earnings"},
		},
		researchFn: defaultResearch,
		synthesis: &contracts.SynthesisOutput{
			InvestmentIdeas: []contracts.SynthesizedIdea{
				synthesized("Cloud leaders", 0.9),
				synthesized("Speculative biotech", 0.4),
				synthesized("Energy transition", 0.7),
			},
		},
	}
}

func (f *fakeAgents) bundle() contracts.Agents {
	return contracts.Agents{Planning: f, Research: f, Analysis: f, Compliance: f, Synthesis: f}
}

func (f *fakeAgents) record(p contracts.Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 || f.calls[len(f.calls)-1] != p {
		f.calls = append(f.calls, p)
	}
}

func (f *fakeAgents) phases() []contracts.Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contracts.Phase(nil), f.calls...)
}

func (f *fakeAgents) CreateResearchPlan(ctx context.Context, requestID string, pc *contracts.PlanningContext) (*contracts.PlanningOutput, error) {
	f.record(contracts.PhasePlanning)
	f.planningContext = pc
	if f.planHook != nil {
		hook := f.planHook
		f.planHook = nil
		hook()
	}
	return f.plan, f.planErr
}

func (f *fakeAgents) ProcessResearchRequest(ctx context.Context, req *contracts.ResearchRequest) (*contracts.ResearchResult, error) {
	f.record(contracts.PhaseResearch)
	f.mu.Lock()
	f.researchRequests = append(f.researchRequests, req)
	f.mu.Unlock()
	return f.researchFn(req)
}

func (f *fakeAgents) ProcessAnalysisRequest(ctx context.Context, req *contracts.AnalysisRequest) (*contracts.AnalysisOutput, error) {
	f.record(contracts.PhaseAnalysis)
	f.analysisRequest = req
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}

	out := &contracts.AnalysisOutput{Summary: "analysis done", Confidence: 0.8}
	for _, inv := range req.Investments {
		out.Analyses = append(out.Analyses, contracts.InvestmentAnalysis{Investment: inv, ExpectedReturn: 0.1})
	}
	return out, nil
}

func (f *fakeAgents) ProcessComplianceRequest(ctx context.Context, req *contracts.ComplianceRequest) (*contracts.ComplianceOutput, error) {
	f.record(contracts.PhaseCompliance)
	f.complianceRequest = req
	if f.complianceErr != nil {
		return nil, f.complianceErr
	}

	out := &contracts.ComplianceOutput{Summary: "all clear"}
	for _, inv := range req.Investments {
		out.Checks = append(out.Checks, contracts.ComplianceCheck{Investment: inv.Name, Compliant: true})
	}
	return out, nil
}

func (f *fakeAgents) ProcessSynthesisRequest(ctx context.Context, req *contracts.SynthesisRequest) (*contracts.SynthesisOutput, error) {
	f.record(contracts.PhaseSynthesis)
	f.synthesisRequest = req
	return f.synthesis, f.synthesisErr
}

func defaultResearch(req *contracts.ResearchRequest) (*contracts.ResearchResult, error) {
	res := &contracts.ResearchResult{
		Topic:        req.Topic,
		ResearchType: req.ResearchType,
		Findings:     []contracts.ResearchFinding{{Title: "finding for " + req.Topic}},
		Summary:      "summary of " + req.Topic,
	}
	if req.ResearchType == contracts.ResearchMarketTrends {
		res.Investments = []contracts.Investment{
			{Name: "Apple", Ticker: "AAPL", Type: contracts.TypeStock, Sector: "technology"},
			{Name: "Microsoft", Ticker: "MSFT", Type: contracts.TypeStock, Sector: "technology"},
		}
	} else {
		res.Investments = []contracts.Investment{
			{Name: "Apple Inc.", Ticker: "aapl", Type: contracts.TypeStock, Sector: "technology"},
			{Name: "Exxon", Ticker: "XOM", Type: contracts.TypeStock, Sector: "energy"},
		}
	}
	return res, nil
}

func synthesized(title string, confidence float64) contracts.SynthesizedIdea {
	return contracts.SynthesizedIdea{
		Title:           title,
		Description:     title + " description",
		Rationale:       "because",
		Investments:     []contracts.Investment{{Name: title, Ticker: "T", Type: contracts.TypeStock, Sector: "technology"}},
		Strategy:        contracts.StrategyBuy,
		TimeHorizon:     contracts.HorizonMedium,
		ConfidenceScore: contracts.Float64(confidence),
		RiskLevel:       contracts.RiskModerate,
		TargetAudience:  []contracts.Audience{contracts.AudienceRetail},
	}
}

// fakeRepo stores ideas in memory; failAt (1-based) makes that create call fail
type fakeRepo struct {
	mu      sync.Mutex
	created []*contracts.CreateIdeaRequest
	failAt  int
}

func (r *fakeRepo) CreateInvestmentIdea(ctx context.Context, req *contracts.CreateIdeaRequest) (*contracts.InvestmentIdea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.created = append(r.created, req)
	n := len(r.created)
	if r.failAt > 0 && n == r.failAt {
		return nil, errors.New("database is down")
	}

	now := time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC)
	return &contracts.InvestmentIdea{
		ID:                fmt.Sprintf("idea-%d", n),
		Version:           1,
		Title:             req.Title,
		Description:       req.Description,
		Investments:       req.Investments,
		Rationale:         req.Rationale,
		Strategy:          req.Strategy,
		TimeHorizon:       req.TimeHorizon,
		ConfidenceScore:   req.ConfidenceScore,
		PotentialOutcomes: req.PotentialOutcomes,
		RiskLevel:         req.RiskLevel,
		TargetAudience:    req.TargetAudience,
		Metadata:          req.Metadata,
		Tags:              req.Tags,
		CreatedBy:         req.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (r *fakeRepo) GetInvestmentIdea(ctx context.Context, id string) (*contracts.InvestmentIdea, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

// recordingObserver captures observer callbacks
type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	steps    []contracts.ProcessingStep
	finished []error
}

func (o *recordingObserver) RunStarted(requestID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, requestID)
}

func (o *recordingObserver) StepRecorded(requestID string, step contracts.ProcessingStep) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, step)
}

func (o *recordingObserver) RunFinished(requestID string, result *contracts.IdeaGenerationResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, err)
}

// recordingRecorder captures run records and can fail on demand
type recordingRecorder struct {
	records []*contracts.RunRecord
	err     error
}

func (r *recordingRecorder) RecordRun(ctx context.Context, record *contracts.RunRecord) error {
	r.records = append(r.records, record)
	return r.err
}

func newTestOrchestrator(agents *fakeAgents, repo contracts.IdeaRepository, opts Options) *Orchestrator {
	log := logger.NewNop()
	return NewOrchestrator(
		agents.bundle(),
		repo,
		selection.NewFilterEngine(log),
		selection.NewRanker(selection.DefaultFactorWeights(), log),
		log,
		opts,
	)
}

func baseRequest(id string) *contracts.GenerationRequest {
	return &contracts.GenerationRequest{
		UserID:    "user-7",
		RequestID: id,
		Parameters: contracts.GenerationParameters{
			InvestmentHorizon: contracts.HorizonMedium,
			RiskTolerance:     contracts.ToleranceModerate,
			Sectors:           []string{"Technology", "energy", " technology "},
			MinimumConfidence: contracts.Float64(0.5),
			MaximumIdeas:      contracts.Int(5),
		},
	}
}

func stepPhases(steps []contracts.ProcessingStep) []contracts.Phase {
	out := make([]contracts.Phase, len(steps))
	for i, s := range steps {
		out[i] = s.Phase
	}
	return out
}

func stepStatuses(steps []contracts.ProcessingStep) []contracts.StepStatus {
	out := make([]contracts.StepStatus, len(steps))
	for i, s := range steps {
		out[i] = s.Status
	}
	return out
}
