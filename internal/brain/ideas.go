package brain

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// Draft defaults applied when synthesis leaves a field empty
const (
	defaultIdeaStrategy   = contracts.StrategyBuy
	defaultIdeaHorizon    = contracts.HorizonMedium
	defaultIdeaConfidence = 0.5
	defaultIdeaRisk       = contracts.RiskModerate
)

var defaultIdeaAudience = []contracts.Audience{contracts.AudienceRetail}

// draftRequest converts one synthesized idea into a repository create request
func draftRequest(idea *contracts.SynthesizedIdea, userID string) *contracts.CreateIdeaRequest {
	req := &contracts.CreateIdeaRequest{
		Title:             idea.Title,
		Description:       idea.Description,
		Investments:       append([]contracts.Investment(nil), idea.Investments...),
		Rationale:         idea.Rationale,
		Strategy:          idea.Strategy,
		TimeHorizon:       idea.TimeHorizon,
		ConfidenceScore:   defaultIdeaConfidence,
		PotentialOutcomes: append([]contracts.OutcomeScenario(nil), idea.PotentialOutcomes...),
		RiskLevel:         idea.RiskLevel,
		TargetAudience:    append([]contracts.Audience(nil), idea.TargetAudience...),
		Metadata:          idea.Metadata,
		Tags:              append([]string(nil), idea.Tags...),
		CreatedBy:         userID,
	}

	// 0.0 is a legitimate confidence; only an absent score gets the default
	if idea.ConfidenceScore != nil {
		req.ConfidenceScore = *idea.ConfidenceScore
	}
	if req.Strategy == "" {
		req.Strategy = defaultIdeaStrategy
	}
	if req.TimeHorizon == "" {
		req.TimeHorizon = defaultIdeaHorizon
	}
	if req.RiskLevel == "" {
		req.RiskLevel = defaultIdeaRisk
	}
	if len(req.TargetAudience) == 0 {
		req.TargetAudience = append([]contracts.Audience(nil), defaultIdeaAudience...)
	}
	if req.Investments == nil {
		req.Investments = []contracts.Investment{}
	}
	return req
}

// persistDrafts stores every synthesized idea in order; the first error stops the loop
func persistDrafts(ctx context.Context, repo contracts.IdeaRepository, synthesis *contracts.SynthesisOutput, userID string) ([]contracts.InvestmentIdea, error) {
	drafts := make([]contracts.InvestmentIdea, 0, len(synthesis.InvestmentIdeas))

	for i := range synthesis.InvestmentIdeas {
		created, err := repo.CreateInvestmentIdea(ctx, draftRequest(&synthesis.InvestmentIdeas[i], userID))
		if err != nil {
			return drafts, fmt.Errorf("persist idea %d (%q): %w", i+1, synthesis.InvestmentIdeas[i].Title, err)
		}
		if created == nil {
			return drafts, fmt.Errorf("persist idea %d: repository returned no idea", i+1)
		}
		drafts = append(drafts, *created)
	}

	return drafts, nil
}
