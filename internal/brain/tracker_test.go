package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// stepClock advances by step on every call
func stepClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func TestPhaseTracker_Track(t *testing.T) {
	obs := &recordingObserver{}
	tr := NewPhaseTracker("req-1", logger.NewNop(), obs)
	tr.now = stepClock(time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC), 250*time.Millisecond)

	plan := &contracts.PlanningOutput{PlanID: "p"}
	out, err := tr.Track(context.Background(), contracts.PhasePlanning, func(ctx context.Context) (contracts.PhaseOutput, error) {
		return plan, nil
	})
	require.NoError(t, err)
	assert.Same(t, plan, out)

	boom := errors.New("boom")
	out, err = tr.Track(context.Background(), contracts.PhaseResearch, func(ctx context.Context) (contracts.PhaseOutput, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)

	steps := tr.Steps()
	require.Len(t, steps, 2)

	assert.Equal(t, contracts.StepCompleted, steps[0].Status)
	assert.Equal(t, "planning-agent", steps[0].AgentName)
	assert.Equal(t, int64(250), steps[0].DurationMs)
	assert.Same(t, plan, steps[0].Output)

	assert.Equal(t, contracts.StepFailed, steps[1].Status)
	assert.Equal(t, "boom", steps[1].Error)
	assert.Nil(t, steps[1].Output)

	assert.Equal(t, map[contracts.Phase]int64{
		contracts.PhasePlanning: 250,
		contracts.PhaseResearch: 250,
	}, tr.Durations())
	assert.Len(t, obs.steps, 2)
}

func TestPhaseTracker_Skip(t *testing.T) {
	tr := NewPhaseTracker("req-1", logger.NewNop())
	tr.Skip(contracts.PhaseSynthesis, "run cancelled")

	steps := tr.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, contracts.StepSkipped, steps[0].Status)
	assert.Equal(t, "run cancelled", steps[0].Error)
	assert.Zero(t, steps[0].DurationMs)
}

func TestPhaseTracker_StepsIsCopy(t *testing.T) {
	tr := NewPhaseTracker("req-1", logger.NewNop())
	tr.Skip(contracts.PhasePlanning, "x")

	steps := tr.Steps()
	steps[0].Status = contracts.StepCompleted
	assert.Equal(t, contracts.StepSkipped, tr.Steps()[0].Status)
}
