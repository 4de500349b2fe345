package brain

import (
	"context"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// StepObserver is notified as a run progresses.
// Calls happen on the run's goroutine and must not block for long.
type StepObserver interface {
	RunStarted(requestID string)
	StepRecorded(requestID string, step contracts.ProcessingStep)
	RunFinished(requestID string, result *contracts.IdeaGenerationResult, err error)
}

// RunRecorder persists finished runs (success or failure).
// Recorder errors are logged by the orchestrator and never change the run outcome.
type RunRecorder interface {
	RecordRun(ctx context.Context, record *contracts.RunRecord) error
}
