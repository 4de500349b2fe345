package brain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/selection"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// Orchestrator coordinates the five-phase idea generation pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
//	Planning → Research (fan-out) → Analysis → Compliance → Synthesis
//	→ persist drafts → filter → rank
type Orchestrator struct {
	agents   contracts.Agents
	repo     contracts.IdeaRepository
	filter   *selection.FilterEngine
	ranker   *selection.Ranker
	registry *RunRegistry
	stages   []stage
	opts     Options

	observers []StepObserver
	recorder  RunRecorder

	logger *logger.Logger
}

// Options tune orchestrator behaviour
type Options struct {
	// StopOnCancel makes a run check its registry entry between phases and stop
	// (remaining phases recorded as skipped) once cancelled. A phase call in
	// progress is never interrupted.
	StopOnCancel bool

	// DefaultJurisdictions is used when the request context names none
	DefaultJurisdictions []string
}

// stage is one entry of the driver loop
type stage struct {
	phase contracts.Phase
	run   func(ctx context.Context, r *run) (contracts.PhaseOutput, error)
}

// run holds the state of one generation run
type run struct {
	req              *contracts.GenerationRequest
	outputs          map[contracts.Phase]contracts.PhaseOutput
	drafts           []contracts.InvestmentIdea
	researchRequests int
}

// NewOrchestrator creates a new orchestrator with its own run registry
func NewOrchestrator(
	agents contracts.Agents,
	repo contracts.IdeaRepository,
	filter *selection.FilterEngine,
	ranker *selection.Ranker,
	logger *logger.Logger,
	opts Options,
) *Orchestrator {
	o := &Orchestrator{
		agents:   agents,
		repo:     repo,
		filter:   filter,
		ranker:   ranker,
		registry: NewRunRegistry(),
		opts:     opts,
		logger:   logger,
	}

	o.stages = []stage{
		{phase: contracts.PhasePlanning, run: o.runPlanning},
		{phase: contracts.PhaseResearch, run: o.runResearch},
		{phase: contracts.PhaseAnalysis, run: o.runAnalysis},
		{phase: contracts.PhaseCompliance, run: o.runCompliance},
		{phase: contracts.PhaseSynthesis, run: o.runSynthesis},
	}

	return o
}

// WithObserver adds a step observer
func (o *Orchestrator) WithObserver(obs StepObserver) *Orchestrator {
	o.observers = append(o.observers, obs)
	return o
}

// WithRecorder sets the run recorder
func (o *Orchestrator) WithRecorder(rec RunRecorder) *Orchestrator {
	o.recorder = rec
	return o
}

// GenerateInvestmentIdeas runs the full pipeline for one request.
// On failure the partial result (steps + metadata, Ideas == nil) is returned
// together with a *GenerationError.
func (o *Orchestrator) GenerateInvestmentIdeas(ctx context.Context, in *contracts.GenerationRequest) (*contracts.IdeaGenerationResult, error) {
	if in == nil {
		return nil, ErrNilRequest
	}

	req := cloneRequest(in)
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if !o.registry.Register(req) {
		o.logger.WithFields(map[string]interface{}{
			"request_id": req.RequestID,
		}).Warn("Rejected duplicate request")
		return nil, fmt.Errorf("%w: %s", ErrRequestInFlight, req.RequestID)
	}
	defer o.registry.release(req)

	startedAt := time.Now()
	o.logger.WithFields(map[string]interface{}{
		"request_id":     req.RequestID,
		"user_id":        req.UserID,
		"horizon":        req.Parameters.InvestmentHorizon,
		"risk_tolerance": req.Parameters.RiskTolerance,
		"sectors":        req.Parameters.Sectors,
		"max_ideas":      req.Parameters.MaxIdeas(),
	}).Info("Starting idea generation")

	for _, obs := range o.observers {
		obs.RunStarted(req.RequestID)
	}

	tracker := NewPhaseTracker(req.RequestID, o.logger, o.observers...)
	r := &run{
		req:     req,
		outputs: make(map[contracts.Phase]contracts.PhaseOutput, len(o.stages)),
	}

	failedPhase, err := o.drive(ctx, r, tracker)

	result := &contracts.IdeaGenerationResult{
		RequestID: req.RequestID,
		Metadata: contracts.GenerationMetadata{
			FilteringCriteria: make([]contracts.FilterCriteria, 0),
		},
	}

	if err == nil {
		o.finalize(r, result)
	} else {
		err = &GenerationError{RequestID: req.RequestID, Phase: failedPhase, Cause: err}
	}

	result.Metadata.ProcessingSteps = tracker.Steps()
	result.ProcessingMetrics = contracts.ProcessingMetrics{
		TotalProcessingTimeMs: time.Since(startedAt).Milliseconds(),
		PhaseDurationsMs:      tracker.Durations(),
		ResearchRequests:      r.researchRequests,
		DataPointsProcessed:   r.dataPoints(),
		IdeasPersisted:        len(r.drafts),
	}

	o.finish(ctx, req, result, err, startedAt)

	return result, err
}

// drive runs the stages in order; it stops at the first failure
func (o *Orchestrator) drive(ctx context.Context, r *run, tracker *PhaseTracker) (contracts.Phase, error) {
	for i, st := range o.stages {
		if i > 0 && o.opts.StopOnCancel && !o.registry.owns(r.req) {
			for _, rest := range o.stages[i:] {
				tracker.Skip(rest.phase, ErrRunCancelled.Error())
			}
			return st.phase, ErrRunCancelled
		}

		out, err := tracker.Track(ctx, st.phase, func(ctx context.Context) (contracts.PhaseOutput, error) {
			return st.run(ctx, r)
		})
		if err != nil {
			return st.phase, fmt.Errorf("%s phase: %w", st.phase, err)
		}
		r.outputs[st.phase] = out
	}
	return "", nil
}

// finalize filters and ranks the persisted drafts
func (o *Orchestrator) finalize(r *run, result *contracts.IdeaGenerationResult) {
	params := &r.req.Parameters

	filtered, criteria := o.filter.ApplyFilters(r.drafts, params)
	ranked := o.ranker.Rank(filtered, params)

	result.Ideas = ranked
	result.Metadata.TotalIdeasGenerated = len(r.drafts)
	result.Metadata.TotalIdeasFiltered = len(r.drafts) - len(filtered)
	result.Metadata.FilteringCriteria = criteria
	result.Metadata.ConfidenceDistribution = selection.ConfidenceDistributionOf(ranked)
}

// finish logs the outcome and notifies observers and the recorder
func (o *Orchestrator) finish(ctx context.Context, req *contracts.GenerationRequest, result *contracts.IdeaGenerationResult, err error, startedAt time.Time) {
	finishedAt := time.Now()

	record := &contracts.RunRecord{
		Request:    *req,
		Status:     contracts.RunSucceeded,
		Result:     result,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	fields := map[string]interface{}{
		"request_id":      req.RequestID,
		"duration_ms":     result.ProcessingMetrics.TotalProcessingTimeMs,
		"steps":           len(result.Metadata.ProcessingSteps),
		"ideas_persisted": result.ProcessingMetrics.IdeasPersisted,
	}

	if err != nil {
		record.Status = contracts.RunFailed
		if errors.Is(err, ErrRunCancelled) {
			record.Status = contracts.RunCancelled
		}
		record.Error = err.Error()
		o.logger.WithFields(fields).WithError(err).Error("Idea generation failed")
	} else {
		fields["ideas_generated"] = result.Metadata.TotalIdeasGenerated
		fields["ideas_filtered"] = result.Metadata.TotalIdeasFiltered
		fields["ideas_returned"] = len(result.Ideas)
		o.logger.WithFields(fields).Info("Idea generation completed")
	}

	for _, obs := range o.observers {
		obs.RunFinished(req.RequestID, result, err)
	}

	if o.recorder != nil {
		if recErr := o.recorder.RecordRun(context.WithoutCancel(ctx), record); recErr != nil {
			o.logger.WithFields(map[string]interface{}{
				"request_id": req.RequestID,
			}).WithError(recErr).Warn("Failed to record run")
		}
	}
}

// CancelRequest removes the request from the registry.
// Without Options.StopOnCancel the in-flight run still completes.
func (o *Orchestrator) CancelRequest(requestID string) bool {
	removed := o.registry.Remove(requestID)

	o.logger.WithFields(map[string]interface{}{
		"request_id":     requestID,
		"removed":        removed,
		"stop_on_cancel": o.opts.StopOnCancel,
	}).Info("Cancel requested")

	return removed
}

// GetActiveRequestStatus returns a copy of the in-flight request, if any
func (o *Orchestrator) GetActiveRequestStatus(requestID string) (*contracts.GenerationRequest, bool) {
	req, ok := o.registry.Get(requestID)
	if !ok {
		return nil, false
	}
	return cloneRequest(req), true
}

// ActiveRequests returns the in-flight request IDs
func (o *Orchestrator) ActiveRequests() []string {
	return o.registry.IDs()
}

// ---- stages ----

func (o *Orchestrator) runPlanning(ctx context.Context, r *run) (contracts.PhaseOutput, error) {
	pc := buildPlanningContext(r.req, o.opts.DefaultJurisdictions)

	plan, err := o.agents.Planning.CreateResearchPlan(ctx, r.req.RequestID, pc)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: planning agent returned no plan", ErrUnexpectedOutput)
	}
	return plan, nil
}

func (o *Orchestrator) runResearch(ctx context.Context, r *run) (contracts.PhaseOutput, error) {
	plan, err := expectOutput[*contracts.PlanningOutput](r, contracts.PhasePlanning)
	if err != nil {
		return nil, err
	}

	requests := buildResearchRequests(plan, &r.req.Parameters)
	r.researchRequests = len(requests)

	research, err := fanOutResearch(ctx, o.agents.Research, requests)
	if err != nil {
		return nil, err
	}
	return research, nil
}

func (o *Orchestrator) runAnalysis(ctx context.Context, r *run) (contracts.PhaseOutput, error) {
	research, err := expectOutput[*contracts.ResearchOutput](r, contracts.PhaseResearch)
	if err != nil {
		return nil, err
	}

	analysis, err := o.agents.Analysis.ProcessAnalysisRequest(ctx, buildAnalysisRequest(r.req, research))
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, fmt.Errorf("%w: analysis agent returned no analysis", ErrUnexpectedOutput)
	}
	return analysis, nil
}

func (o *Orchestrator) runCompliance(ctx context.Context, r *run) (contracts.PhaseOutput, error) {
	research, err := expectOutput[*contracts.ResearchOutput](r, contracts.PhaseResearch)
	if err != nil {
		return nil, err
	}
	analysis, err := expectOutput[*contracts.AnalysisOutput](r, contracts.PhaseAnalysis)
	if err != nil {
		return nil, err
	}

	creq := buildComplianceRequest(r.req, research, analysis, o.opts.DefaultJurisdictions)
	compliance, err := o.agents.Compliance.ProcessComplianceRequest(ctx, creq)
	if err != nil {
		return nil, err
	}
	if compliance == nil {
		return nil, fmt.Errorf("%w: compliance agent returned no checks", ErrUnexpectedOutput)
	}
	return compliance, nil
}

// runSynthesis also persists the drafts; a repository error fails this phase
func (o *Orchestrator) runSynthesis(ctx context.Context, r *run) (contracts.PhaseOutput, error) {
	research, err := expectOutput[*contracts.ResearchOutput](r, contracts.PhaseResearch)
	if err != nil {
		return nil, err
	}
	analysis, err := expectOutput[*contracts.AnalysisOutput](r, contracts.PhaseAnalysis)
	if err != nil {
		return nil, err
	}
	compliance, err := expectOutput[*contracts.ComplianceOutput](r, contracts.PhaseCompliance)
	if err != nil {
		return nil, err
	}

	synthesis, err := o.agents.Synthesis.ProcessSynthesisRequest(ctx, buildSynthesisRequest(r.req, research, analysis, compliance))
	if err != nil {
		return nil, err
	}
	if synthesis == nil {
		return nil, fmt.Errorf("%w: synthesis agent returned no ideas", ErrUnexpectedOutput)
	}

	drafts, err := persistDrafts(ctx, o.repo, synthesis, r.req.UserID)
	r.drafts = drafts
	if err != nil {
		return nil, err
	}
	return synthesis, nil
}

// expectOutput returns the recorded output of phase as variant T
func expectOutput[T contracts.PhaseOutput](r *run, phase contracts.Phase) (T, error) {
	var zero T

	out, ok := r.outputs[phase]
	if !ok || out == nil {
		return zero, fmt.Errorf("%w: no %s output", ErrUnexpectedOutput, phase)
	}
	typed, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s produced %T", ErrUnexpectedOutput, phase, out)
	}
	return typed, nil
}

// dataPoints counts the research findings, candidate investments, analyses and checks seen
func (r *run) dataPoints() int {
	n := 0
	if research, ok := r.outputs[contracts.PhaseResearch].(*contracts.ResearchOutput); ok {
		n += len(research.Findings()) + len(research.Investments())
	}
	if analysis, ok := r.outputs[contracts.PhaseAnalysis].(*contracts.AnalysisOutput); ok {
		n += len(analysis.Analyses)
	}
	if compliance, ok := r.outputs[contracts.PhaseCompliance].(*contracts.ComplianceOutput); ok {
		n += len(compliance.Checks)
	}
	return n
}

// cloneRequest copies the request so callers cannot mutate a running request
func cloneRequest(in *contracts.GenerationRequest) *contracts.GenerationRequest {
	out := *in

	p := &out.Parameters
	p.Sectors = slices.Clone(p.Sectors)
	p.AssetClasses = slices.Clone(p.AssetClasses)
	p.Geography = slices.Clone(p.Geography)
	p.ExcludedInvestments = slices.Clone(p.ExcludedInvestments)
	p.TargetAudience = slices.Clone(p.TargetAudience)
	if p.MinimumConfidence != nil {
		p.MinimumConfidence = contracts.Float64(*p.MinimumConfidence)
	}
	if p.MaximumIdeas != nil {
		p.MaximumIdeas = contracts.Int(*p.MaximumIdeas)
	}

	if in.Context != nil {
		c := *in.Context
		c.Jurisdictions = slices.Clone(c.Jurisdictions)
		if c.IncludeESG != nil {
			c.IncludeESG = contracts.Bool(*c.IncludeESG)
		}
		out.Context = &c
	}
	return &out
}
