package contracts

import "context"

// PlanningAgent creates the research plan (Planning)
// ⭐ SSOT: Planning stage 인터페이스
type PlanningAgent interface {
	CreateResearchPlan(ctx context.Context, requestID string, planningContext *PlanningContext) (*PlanningOutput, error)
}

// ResearchAgent answers one research sub-request (Research)
// ⭐ SSOT: Research stage 인터페이스 (fan-out 단위)
type ResearchAgent interface {
	ProcessResearchRequest(ctx context.Context, req *ResearchRequest) (*ResearchResult, error)
}

// AnalysisAgent analyzes candidate investments (Analysis)
// ⭐ SSOT: Analysis stage 인터페이스
type AnalysisAgent interface {
	ProcessAnalysisRequest(ctx context.Context, req *AnalysisRequest) (*AnalysisOutput, error)
}

// ComplianceAgent checks candidates against regulations (Compliance)
// ⭐ SSOT: Compliance stage 인터페이스
type ComplianceAgent interface {
	ProcessComplianceRequest(ctx context.Context, req *ComplianceRequest) (*ComplianceOutput, error)
}

// SynthesisAgent produces the draft ideas (Synthesis)
// ⭐ SSOT: Synthesis stage 인터페이스
type SynthesisAgent interface {
	ProcessSynthesisRequest(ctx context.Context, req *SynthesisRequest) (*SynthesisOutput, error)
}

// IdeaRepository persists draft ideas
// ⭐ SSOT: 아이디어 저장 인터페이스
type IdeaRepository interface {
	CreateInvestmentIdea(ctx context.Context, req *CreateIdeaRequest) (*InvestmentIdea, error)
	GetInvestmentIdea(ctx context.Context, id string) (*InvestmentIdea, error)
}

// Agents bundles the five stage adapters
type Agents struct {
	Planning   PlanningAgent
	Research   ResearchAgent
	Analysis   AnalysisAgent
	Compliance ComplianceAgent
	Synthesis  SynthesisAgent
}
