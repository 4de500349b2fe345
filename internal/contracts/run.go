package contracts

import "time"

// RunStatus is the final state of one generation run
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// RunRecord is the audit view of a finished run.
// Result is the partial result on failure (Ideas == nil).
type RunRecord struct {
	Request    GenerationRequest     `json:"request"`
	Status     RunStatus             `json:"status"`
	Error      string                `json:"error,omitempty"`
	Result     *IdeaGenerationResult `json:"result"`
	StartedAt  time.Time             `json:"startedAt"`
	FinishedAt time.Time             `json:"finishedAt"`
}
