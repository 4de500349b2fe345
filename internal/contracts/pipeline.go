package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Pipeline Phase 정의 (SSOT)
// 모든 로그, ProcessingStep, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   Planning → Research → Analysis → Compliance → Synthesis
//   (Research만 fan-out 병렬 실행)

// Phase represents a pipeline phase
type Phase string

const (
	// PhasePlanning builds the research plan from the caller's parameters
	PhasePlanning Phase = "planning"

	// PhaseResearch fans out market-trend and per-sector research requests
	PhaseResearch Phase = "research"

	// PhaseAnalysis analyzes the candidate investments found by research
	PhaseAnalysis Phase = "analysis"

	// PhaseCompliance checks candidates against jurisdiction rules
	PhaseCompliance Phase = "compliance"

	// PhaseSynthesis turns everything into draft ideas (persisted by the orchestrator)
	PhaseSynthesis Phase = "synthesis"
)

// String returns the phase name
func (p Phase) String() string {
	return string(p)
}

// AgentName returns the name of the stage adapter serving the phase
func (p Phase) AgentName() string {
	return string(p) + "-agent"
}

// AllPhases returns all pipeline phases in order
func AllPhases() []Phase {
	return []Phase{
		PhasePlanning,
		PhaseResearch,
		PhaseAnalysis,
		PhaseCompliance,
		PhaseSynthesis,
	}
}

// IsValidPhase checks if a phase string is valid
func IsValidPhase(s string) bool {
	for _, phase := range AllPhases() {
		if string(phase) == s {
			return true
		}
	}
	return false
}

// StepStatus is the outcome of one phase
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// ProcessingStep records one phase execution.
// Appended exactly once per phase per run, in phase order.
type ProcessingStep struct {
	Phase      Phase       `json:"phaseName"`
	AgentName  string      `json:"agentName"`
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	DurationMs int64       `json:"durationMs"`
	Status     StepStatus  `json:"status"`
	Output     PhaseOutput `json:"output,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// UnmarshalJSON decodes Output into the variant matching Phase
func (s *ProcessingStep) UnmarshalJSON(data []byte) error {
	type stepAlias ProcessingStep
	aux := struct {
		*stepAlias
		Output json.RawMessage `json:"output,omitempty"`
	}{stepAlias: (*stepAlias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Output = nil
	if len(aux.Output) == 0 || string(aux.Output) == "null" {
		return nil
	}

	out, err := DecodePhaseOutput(s.Phase, aux.Output)
	if err != nil {
		return err
	}
	s.Output = out
	return nil
}

// stepWire is the msgpack form of ProcessingStep; Output travels as its JSON encoding
type stepWire struct {
	Phase      Phase      `msgpack:"phase"`
	AgentName  string     `msgpack:"agent_name"`
	StartTime  time.Time  `msgpack:"start_time"`
	EndTime    time.Time  `msgpack:"end_time"`
	DurationMs int64      `msgpack:"duration_ms"`
	Status     StepStatus `msgpack:"status"`
	Output     []byte     `msgpack:"output,omitempty"`
	Error      string     `msgpack:"error,omitempty"`
}

// EncodeMsgpack keeps Output so cached results match in-memory ones
func (s ProcessingStep) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := stepWire{
		Phase:      s.Phase,
		AgentName:  s.AgentName,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		DurationMs: s.DurationMs,
		Status:     s.Status,
		Error:      s.Error,
	}
	if s.Output != nil {
		data, err := json.Marshal(s.Output)
		if err != nil {
			return fmt.Errorf("encode %s output: %w", s.Phase, err)
		}
		w.Output = data
	}
	return enc.Encode(&w)
}

// DecodeMsgpack restores Output into the variant matching Phase
func (s *ProcessingStep) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w stepWire
	if err := dec.Decode(&w); err != nil {
		return err
	}

	*s = ProcessingStep{
		Phase:      w.Phase,
		AgentName:  w.AgentName,
		StartTime:  w.StartTime,
		EndTime:    w.EndTime,
		DurationMs: w.DurationMs,
		Status:     w.Status,
		Error:      w.Error,
	}
	if len(w.Output) == 0 || string(w.Output) == "null" {
		return nil
	}

	out, err := DecodePhaseOutput(w.Phase, w.Output)
	if err != nil {
		return err
	}
	s.Output = out
	return nil
}

// PhaseOutput is the tagged union of phase results.
// Only the five *Output types in this package implement it.
type PhaseOutput interface {
	Phase() Phase
	isPhaseOutput()
}

func (*PlanningOutput) Phase() Phase   { return PhasePlanning }
func (*ResearchOutput) Phase() Phase   { return PhaseResearch }
func (*AnalysisOutput) Phase() Phase   { return PhaseAnalysis }
func (*ComplianceOutput) Phase() Phase { return PhaseCompliance }
func (*SynthesisOutput) Phase() Phase  { return PhaseSynthesis }

func (*PlanningOutput) isPhaseOutput()   {}
func (*ResearchOutput) isPhaseOutput()   {}
func (*AnalysisOutput) isPhaseOutput()   {}
func (*ComplianceOutput) isPhaseOutput() {}
func (*SynthesisOutput) isPhaseOutput()  {}

// DecodePhaseOutput decodes a JSON payload into the output variant of the phase
func DecodePhaseOutput(phase Phase, data []byte) (PhaseOutput, error) {
	var out PhaseOutput
	switch phase {
	case PhasePlanning:
		out = &PlanningOutput{}
	case PhaseResearch:
		out = &ResearchOutput{}
	case PhaseAnalysis:
		out = &AnalysisOutput{}
	case PhaseCompliance:
		out = &ComplianceOutput{}
	case PhaseSynthesis:
		out = &SynthesisOutput{}
	default:
		return nil, fmt.Errorf("unknown phase %q", phase)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode %s output: %w", phase, err)
	}
	return out, nil
}
