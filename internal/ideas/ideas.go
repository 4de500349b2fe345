package ideas

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// ErrIdeaNotFound is returned when no idea has the requested ID
var ErrIdeaNotFound = errors.New("investment idea not found")

// newIdea builds version 1 of a draft from the create request
func newIdea(req *contracts.CreateIdeaRequest, now time.Time) *contracts.InvestmentIdea {
	investments := req.Investments
	if investments == nil {
		investments = []contracts.Investment{}
	}

	return &contracts.InvestmentIdea{
		ID:                uuid.NewString(),
		Version:           1,
		Title:             req.Title,
		Description:       req.Description,
		Investments:       append([]contracts.Investment{}, investments...),
		Rationale:         req.Rationale,
		Strategy:          req.Strategy,
		TimeHorizon:       req.TimeHorizon,
		ConfidenceScore:   req.ConfidenceScore,
		PotentialOutcomes: append([]contracts.OutcomeScenario(nil), req.PotentialOutcomes...),
		RiskLevel:         req.RiskLevel,
		TargetAudience:    append([]contracts.Audience(nil), req.TargetAudience...),
		Metadata:          req.Metadata,
		Tags:              append([]string(nil), req.Tags...),
		CreatedBy:         req.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// cloneIdea copies the slices so stored ideas cannot be changed through a returned value
func cloneIdea(in *contracts.InvestmentIdea) *contracts.InvestmentIdea {
	out := *in
	out.Investments = append([]contracts.Investment{}, in.Investments...)
	out.PotentialOutcomes = append([]contracts.OutcomeScenario(nil), in.PotentialOutcomes...)
	out.TargetAudience = append([]contracts.Audience(nil), in.TargetAudience...)
	out.Tags = append([]string(nil), in.Tags...)
	out.Metadata.SourceModels = append([]string(nil), in.Metadata.SourceModels...)
	return &out
}
