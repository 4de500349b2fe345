package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestAllPhases_Order(t *testing.T) {
	want := []Phase{PhasePlanning, PhaseResearch, PhaseAnalysis, PhaseCompliance, PhaseSynthesis}
	assert.Equal(t, want, AllPhases())
}

func TestPhase_AgentName(t *testing.T) {
	assert.Equal(t, "compliance-agent", PhaseCompliance.AgentName())
	assert.True(t, IsValidPhase("synthesis"))
	assert.False(t, IsValidPhase("execution"))
}

func TestProcessingStep_UnmarshalJSON_DecodesVariant(t *testing.T) {
	step := ProcessingStep{
		Phase:      PhasePlanning,
		AgentName:  PhasePlanning.AgentName(),
		StartTime:  time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 1, 8, 9, 0, 1, 0, time.UTC),
		DurationMs: 1000,
		Status:     StepCompleted,
		Output:     &PlanningOutput{PlanID: "plan-1", ResearchDepth: "deep"},
	}

	data, err := json.Marshal(step)
	require.NoError(t, err)

	var decoded ProcessingStep
	require.NoError(t, json.Unmarshal(data, &decoded))

	plan, ok := decoded.Output.(*PlanningOutput)
	require.True(t, ok, "expected *PlanningOutput, got %T", decoded.Output)
	assert.Equal(t, "plan-1", plan.PlanID)
	assert.Equal(t, "deep", plan.ResearchDepth)
	assert.Equal(t, StepCompleted, decoded.Status)
	assert.Equal(t, int64(1000), decoded.DurationMs)
}

func TestProcessingStep_UnmarshalJSON_NoOutput(t *testing.T) {
	raw := `{"phaseName":"compliance","agentName":"compliance-agent","status":"failed","error":"boom"}`

	var step ProcessingStep
	require.NoError(t, json.Unmarshal([]byte(raw), &step))

	assert.Nil(t, step.Output)
	assert.Equal(t, StepFailed, step.Status)
	assert.Equal(t, "boom", step.Error)
}

func TestDecodePhaseOutput_UnknownPhase(t *testing.T) {
	_, err := DecodePhaseOutput("execution", []byte(`{}`))
	assert.Error(t, err)
}

func TestResearchOutput_Concatenation(t *testing.T) {
	out := &ResearchOutput{
		Results: []ResearchResult{
			{Findings: []ResearchFinding{{Title: "a"}}, Investments: []Investment{{Name: "A"}}},
			{Findings: []ResearchFinding{{Title: "b"}, {Title: "c"}}, Investments: []Investment{{Name: "B"}}},
		},
	}

	findings := out.Findings()
	require.Len(t, findings, 3)
	assert.Equal(t, "a", findings[0].Title)
	assert.Equal(t, "c", findings[2].Title)
	assert.Equal(t, []Investment{{Name: "A"}, {Name: "B"}}, out.Investments())
}

func TestProcessingStep_Msgpack_KeepsOutput(t *testing.T) {
	start := time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC)
	result := IdeaGenerationResult{
		RequestID: "req-1",
		Metadata: GenerationMetadata{
			ProcessingSteps: []ProcessingStep{
				{
					Phase:     PhaseResearch,
					AgentName: PhaseResearch.AgentName(),
					StartTime: start,
					EndTime:   start.Add(time.Second),
					Status:    StepCompleted,
					Output: &ResearchOutput{Results: []ResearchResult{
						{Topic: "Sector analysis: Technology", Investments: []Investment{{Name: "A", Ticker: "AAA"}}},
					}},
				},
				{Phase: PhaseAnalysis, AgentName: PhaseAnalysis.AgentName(), Status: StepFailed, Error: "boom"},
			},
		},
	}

	data, err := msgpack.Marshal(&result)
	require.NoError(t, err)

	var decoded IdeaGenerationResult
	require.NoError(t, msgpack.Unmarshal(data, &decoded))

	steps := decoded.Metadata.ProcessingSteps
	require.Len(t, steps, 2)

	research, ok := steps[0].Output.(*ResearchOutput)
	require.True(t, ok, "expected *ResearchOutput, got %T", steps[0].Output)
	assert.Equal(t, "Sector analysis: Technology", research.Results[0].Topic)
	assert.Equal(t, "AAA", research.Results[0].Investments[0].Ticker)
	assert.True(t, start.Equal(steps[0].StartTime))

	assert.Nil(t, steps[1].Output)
	assert.Equal(t, StepFailed, steps[1].Status)
	assert.Equal(t, "boom", steps[1].Error)
}
