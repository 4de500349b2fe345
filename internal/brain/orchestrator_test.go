package brain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateInvestmentIdeas_Success(t *testing.T) {
	agents := newFakeAgents()
	repo := &fakeRepo{}
	obs := &recordingObserver{}
	rec := &recordingRecorder{}
	o := newTestOrchestrator(agents, repo, Options{DefaultJurisdictions: []string{"US"}}).
		WithObserver(obs).
		WithRecorder(rec)

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-1"))
	require.NoError(t, err)
	require.NotNil(t, result)

	// One completed step per phase, in order
	steps := result.Metadata.ProcessingSteps
	assert.Equal(t, contracts.AllPhases(), stepPhases(steps))
	for _, s := range steps {
		assert.Equal(t, contracts.StepCompleted, s.Status)
		assert.Equal(t, s.Phase.AgentName(), s.AgentName)
		assert.NotNil(t, s.Output)
		assert.Equal(t, s.Phase, s.Output.Phase())
	}
	assert.Equal(t, contracts.AllPhases(), agents.phases())

	// 3 drafts persisted, the 0.4 one filtered out, the rest ranked by confidence
	assert.Equal(t, 3, repo.count())
	assert.Equal(t, 3, result.Metadata.TotalIdeasGenerated)
	assert.Equal(t, 1, result.Metadata.TotalIdeasFiltered)
	require.Len(t, result.Ideas, 2)
	assert.Equal(t, "Cloud leaders", result.Ideas[0].Title)
	assert.Equal(t, 1, result.Ideas[0].Rank)
	assert.Equal(t, "Energy transition", result.Ideas[1].Title)
	assert.Equal(t, 2, result.Ideas[1].Rank)

	dist := result.Metadata.ConfidenceDistribution
	assert.Equal(t, 1, dist.High)
	assert.Equal(t, 1, dist.Medium)
	assert.Equal(t, 0, dist.Low)
	assert.InDelta(t, 0.8, dist.Average, 1e-9)

	// metrics
	m := result.ProcessingMetrics
	assert.Equal(t, 3, m.ResearchRequests) // market trends + technology + energy
	assert.Equal(t, 3, m.IdeasPersisted)
	assert.Len(t, m.PhaseDurationsMs, 5)
	assert.Greater(t, m.DataPointsProcessed, 0)

	// registry cleaned up
	assert.Empty(t, o.ActiveRequests())
	_, active := o.GetActiveRequestStatus("req-1")
	assert.False(t, active)

	// observers and recorder
	assert.Equal(t, []string{"req-1"}, obs.started)
	assert.Len(t, obs.steps, 5)
	assert.Equal(t, []error{nil}, obs.finished)
	require.Len(t, rec.records, 1)
	assert.Equal(t, contracts.RunSucceeded, rec.records[0].Status)
	assert.Equal(t, "req-1", rec.records[0].Request.RequestID)
}

func TestGenerateInvestmentIdeas_ComplianceFailure(t *testing.T) {
	agents := newFakeAgents()
	agents.complianceErr = errAgentDown
	repo := &fakeRepo{}
	rec := &recordingRecorder{}
	o := newTestOrchestrator(agents, repo, Options{}).WithRecorder(rec)

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-fail"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Investment idea generation failed"), err.Error())
	assert.ErrorIs(t, err, errAgentDown)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, contracts.PhaseCompliance, genErr.Phase)
	assert.Equal(t, "req-fail", genErr.RequestID)

	// partial result: steps up to and including the failed phase, no ideas
	require.NotNil(t, result)
	assert.Nil(t, result.Ideas)
	steps := result.Metadata.ProcessingSteps
	assert.Equal(t,
		[]contracts.Phase{contracts.PhasePlanning, contracts.PhaseResearch, contracts.PhaseAnalysis, contracts.PhaseCompliance},
		stepPhases(steps))
	assert.Equal(t,
		[]contracts.StepStatus{contracts.StepCompleted, contracts.StepCompleted, contracts.StepCompleted, contracts.StepFailed},
		stepStatuses(steps))
	assert.Contains(t, steps[3].Error, "agent unavailable")
	assert.Nil(t, steps[3].Output)

	// synthesis never ran, nothing persisted
	assert.NotContains(t, agents.phases(), contracts.PhaseSynthesis)
	assert.Zero(t, repo.count())
	assert.Empty(t, o.ActiveRequests())

	require.Len(t, rec.records, 1)
	assert.Equal(t, contracts.RunFailed, rec.records[0].Status)
	assert.Contains(t, rec.records[0].Error, "Investment idea generation failed")
}

func TestGenerateInvestmentIdeas_ResearchFanOutFailure(t *testing.T) {
	agents := newFakeAgents()
	agents.researchFn = func(req *contracts.ResearchRequest) (*contracts.ResearchResult, error) {
		if req.ResearchType == contracts.ResearchSectorAnalysis && strings.Contains(req.Topic, "energy") {
			return nil, errAgentDown
		}
		return defaultResearch(req)
	}
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-research"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errAgentDown)

	steps := result.Metadata.ProcessingSteps
	require.Len(t, steps, 2)
	assert.Equal(t, contracts.PhaseResearch, steps[1].Phase)
	assert.Equal(t, contracts.StepFailed, steps[1].Status)
}

func TestGenerateInvestmentIdeas_ResearchKeepsRequestOrder(t *testing.T) {
	agents := newFakeAgents()
	agents.researchFn = func(req *contracts.ResearchRequest) (*contracts.ResearchResult, error) {
		// the generic request answers last
		if req.ResearchType == contracts.ResearchMarketTrends {
			time.Sleep(20 * time.Millisecond)
		}
		return defaultResearch(req)
	}
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-order"))
	require.NoError(t, err)

	research, ok := result.Metadata.ProcessingSteps[1].Output.(*contracts.ResearchOutput)
	require.True(t, ok)
	require.Len(t, research.Results, 3)
	assert.Equal(t, contracts.ResearchMarketTrends, research.Results[0].ResearchType)
	assert.Equal(t, "Sector analysis: Technology", research.Results[1].Topic)
	assert.Equal(t, "Sector analysis: energy", research.Results[2].Topic)

	// analysis receives research investments deduplicated by ticker, first wins
	names := make([]string, 0)
	for _, inv := range agents.analysisRequest.Investments {
		names = append(names, inv.Name)
	}
	assert.Equal(t, []string{"Apple", "Microsoft", "Exxon"}, names)
}

func TestGenerateInvestmentIdeas_RepositoryFailureFailsSynthesis(t *testing.T) {
	agents := newFakeAgents()
	repo := &fakeRepo{failAt: 2}
	o := newTestOrchestrator(agents, repo, Options{})

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-repo"))
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, contracts.PhaseSynthesis, genErr.Phase)

	steps := result.Metadata.ProcessingSteps
	require.Len(t, steps, 5)
	assert.Equal(t, contracts.StepFailed, steps[4].Status)
	assert.Nil(t, result.Ideas)
	assert.Equal(t, 1, result.ProcessingMetrics.IdeasPersisted)
}

func TestGenerateInvestmentIdeas_EmptySynthesis(t *testing.T) {
	agents := newFakeAgents()
	agents.synthesis = &contracts.SynthesisOutput{}
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-empty"))
	require.NoError(t, err)

	assert.NotNil(t, result.Ideas)
	assert.Empty(t, result.Ideas)
	assert.Equal(t, 0, result.Metadata.TotalIdeasGenerated)
	assert.Equal(t, 0, result.Metadata.TotalIdeasFiltered)
	assert.Equal(t, contracts.ConfidenceDistribution{}, result.Metadata.ConfidenceDistribution)
}

func TestGenerateInvestmentIdeas_NilOutputIsUnexpected(t *testing.T) {
	agents := newFakeAgents()
	agents.plan = nil
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})

	_, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-nil"))
	assert.ErrorIs(t, err, ErrUnexpectedOutput)
}

func TestGenerateInvestmentIdeas_NilRequest(t *testing.T) {
	o := newTestOrchestrator(newFakeAgents(), &fakeRepo{}, Options{})

	result, err := o.GenerateInvestmentIdeas(context.Background(), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNilRequest)
}

func TestGenerateInvestmentIdeas_GeneratesMissingRequestID(t *testing.T) {
	o := newTestOrchestrator(newFakeAgents(), &fakeRepo{}, Options{})

	req := baseRequest("")
	result, err := o.GenerateInvestmentIdeas(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RequestID)
	assert.Empty(t, req.RequestID, "caller's request must not be modified")
}

func TestGenerateInvestmentIdeas_DuplicateInFlight(t *testing.T) {
	agents := newFakeAgents()
	release := make(chan struct{})
	entered := make(chan struct{})
	agents.planHook = func() {
		close(entered)
		<-release
	}
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-dup"))
	}()

	<-entered
	active, ok := o.GetActiveRequestStatus("req-dup")
	require.True(t, ok)
	assert.Equal(t, "user-7", active.UserID)
	assert.Equal(t, []string{"req-dup"}, o.ActiveRequests())

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-dup"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRequestInFlight)

	// the first run's entry is untouched
	assert.True(t, o.registry.Contains("req-dup"))

	close(release)
	wg.Wait()
	assert.NoError(t, firstErr)
	assert.Empty(t, o.ActiveRequests())
}

func TestGenerateInvestmentIdeas_RequestImmutableAfterSubmission(t *testing.T) {
	agents := newFakeAgents()
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})
	req := baseRequest("req-immutable")
	req.Context = &contracts.GenerationContext{Jurisdictions: []string{"US"}}

	agents.planHook = func() {
		req.Parameters.Sectors[0] = "Utilities"
		req.Context.Jurisdictions[0] = "EU"
		*req.Parameters.MaximumIdeas = 1

		active, ok := o.GetActiveRequestStatus("req-immutable")
		require.True(t, ok)
		active.Parameters.Sectors[1] = "Healthcare"
		active.Context.Jurisdictions[0] = "JP"

		again, ok := o.GetActiveRequestStatus("req-immutable")
		require.True(t, ok)
		assert.Equal(t, []string{"Technology", "energy", " technology "}, again.Parameters.Sectors)
		assert.Equal(t, []string{"US"}, again.Context.Jurisdictions)
		assert.Equal(t, 5, again.Parameters.MaxIdeas())
	}

	result, err := o.GenerateInvestmentIdeas(context.Background(), req)
	require.NoError(t, err)

	research, ok := result.Metadata.ProcessingSteps[1].Output.(*contracts.ResearchOutput)
	require.True(t, ok)
	require.Len(t, research.Results, 3)
	assert.Equal(t, "Sector analysis: Technology", research.Results[1].Topic)
	assert.Equal(t, "Sector analysis: energy", research.Results[2].Topic)
	assert.Equal(t, []string{"US"}, agents.complianceRequest.Parameters.Jurisdictions)
}

func TestCancelRequest_DefaultRunContinues(t *testing.T) {
	agents := newFakeAgents()
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{})
	agents.planHook = func() {
		assert.True(t, o.CancelRequest("req-cancel"))
	}

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-cancel"))
	require.NoError(t, err)
	assert.Len(t, result.Metadata.ProcessingSteps, 5)
	assert.False(t, o.CancelRequest("req-cancel"))
}

func TestCancelRequest_StopOnCancel(t *testing.T) {
	agents := newFakeAgents()
	rec := &recordingRecorder{}
	o := newTestOrchestrator(agents, &fakeRepo{}, Options{StopOnCancel: true}).WithRecorder(rec)
	agents.planHook = func() {
		o.CancelRequest("req-stop")
	}

	result, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-stop"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunCancelled)
	assert.Nil(t, result.Ideas)

	steps := result.Metadata.ProcessingSteps
	assert.Equal(t, contracts.AllPhases(), stepPhases(steps))
	assert.Equal(t, contracts.StepCompleted, steps[0].Status)
	for _, s := range steps[1:] {
		assert.Equal(t, contracts.StepSkipped, s.Status, s.Phase)
	}
	assert.Equal(t, []contracts.Phase{contracts.PhasePlanning}, agents.phases())

	require.Len(t, rec.records, 1)
	assert.Equal(t, contracts.RunCancelled, rec.records[0].Status)
}

func TestGenerateInvestmentIdeas_RecorderErrorIgnored(t *testing.T) {
	rec := &recordingRecorder{err: errors.New("audit db down")}
	o := newTestOrchestrator(newFakeAgents(), &fakeRepo{}, Options{}).WithRecorder(rec)

	_, err := o.GenerateInvestmentIdeas(context.Background(), baseRequest("req-audit"))
	assert.NoError(t, err)
	assert.Len(t, rec.records, 1)
}

func TestExpectOutput_WrongVariant(t *testing.T) {
	r := &run{outputs: map[contracts.Phase]contracts.PhaseOutput{
		contracts.PhaseResearch: &contracts.PlanningOutput{},
	}}

	_, err := expectOutput[*contracts.ResearchOutput](r, contracts.PhaseResearch)
	assert.ErrorIs(t, err, ErrUnexpectedOutput)

	_, err = expectOutput[*contracts.AnalysisOutput](r, contracts.PhaseAnalysis)
	assert.ErrorIs(t, err, ErrUnexpectedOutput)
}

func TestGenerationError_Message(t *testing.T) {
	err := &GenerationError{RequestID: "r", Phase: contracts.PhaseAnalysis, Cause: errAgentDown}
	assert.Equal(t, "Investment idea generation failed: agent unavailable", err.Error())
	assert.ErrorIs(t, err, errAgentDown)
}
