package brain

import (
	"errors"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

var (
	// ErrNilRequest is returned when GenerateInvestmentIdeas receives no request
	ErrNilRequest = errors.New("generation request is nil")

	// ErrRequestInFlight is returned when the request ID is already running
	ErrRequestInFlight = errors.New("request already in flight")

	// ErrRunCancelled is returned when a run observes its own cancellation between phases
	ErrRunCancelled = errors.New("run cancelled")

	// ErrUnexpectedOutput is returned when a phase output is missing or of the wrong variant
	ErrUnexpectedOutput = errors.New("unexpected phase output")
)

// generationFailedPrefix is the fixed prefix of every run failure message
const generationFailedPrefix = "Investment idea generation failed: "

// GenerationError wraps the cause of a failed run.
// Phase is empty when the failure happened outside a phase.
type GenerationError struct {
	RequestID string
	Phase     contracts.Phase
	Cause     error
}

func (e *GenerationError) Error() string {
	return generationFailedPrefix + e.Cause.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
