package brain

import (
	"context"
	"time"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// PhaseTracker wraps each phase invocation and records one ProcessingStep per phase
// ⭐ SSOT: ProcessingStep 생성은 여기서만
type PhaseTracker struct {
	requestID string
	steps     []contracts.ProcessingStep
	observers []StepObserver
	logger    *logger.Logger
	now       func() time.Time
}

// NewPhaseTracker creates a tracker for one run
func NewPhaseTracker(requestID string, logger *logger.Logger, observers ...StepObserver) *PhaseTracker {
	return &PhaseTracker{
		requestID: requestID,
		steps:     make([]contracts.ProcessingStep, 0, len(contracts.AllPhases())),
		observers: observers,
		logger:    logger,
		now:       time.Now,
	}
}

// Track runs fn as the given phase and appends exactly one step:
// completed with the output, or failed with the error message.
func (t *PhaseTracker) Track(
	ctx context.Context,
	phase contracts.Phase,
	fn func(ctx context.Context) (contracts.PhaseOutput, error),
) (contracts.PhaseOutput, error) {
	start := t.now()
	out, err := fn(ctx)
	end := t.now()

	step := contracts.ProcessingStep{
		Phase:      phase,
		AgentName:  phase.AgentName(),
		StartTime:  start,
		EndTime:    end,
		DurationMs: end.Sub(start).Milliseconds(),
	}

	log := t.logger.WithFields(map[string]interface{}{
		"request_id":  t.requestID,
		"phase":       phase.String(),
		"duration_ms": step.DurationMs,
	})

	if err != nil {
		step.Status = contracts.StepFailed
		step.Error = err.Error()
		t.append(step)
		log.WithError(err).Error("Phase failed")
		return nil, err
	}

	step.Status = contracts.StepCompleted
	step.Output = out
	t.append(step)
	log.Info("Phase completed")

	return out, nil
}

// Skip appends a skipped step for a phase that was never invoked
func (t *PhaseTracker) Skip(phase contracts.Phase, reason string) {
	now := t.now()
	t.append(contracts.ProcessingStep{
		Phase:     phase,
		AgentName: phase.AgentName(),
		StartTime: now,
		EndTime:   now,
		Status:    contracts.StepSkipped,
		Error:     reason,
	})
}

func (t *PhaseTracker) append(step contracts.ProcessingStep) {
	t.steps = append(t.steps, step)
	for _, obs := range t.observers {
		obs.StepRecorded(t.requestID, step)
	}
}

// Steps returns a copy of the recorded steps in order
func (t *PhaseTracker) Steps() []contracts.ProcessingStep {
	steps := make([]contracts.ProcessingStep, len(t.steps))
	copy(steps, t.steps)
	return steps
}

// Durations returns the per-phase duration in milliseconds
func (t *PhaseTracker) Durations() map[contracts.Phase]int64 {
	durations := make(map[contracts.Phase]int64, len(t.steps))
	for _, s := range t.steps {
		durations[s.Phase] = s.DurationMs
	}
	return durations
}
