package brain

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// fanOutResearch runs every research request concurrently.
// The first failure cancels the group; results keep request order.
func fanOutResearch(ctx context.Context, agent contracts.ResearchAgent, requests []*contracts.ResearchRequest) (*contracts.ResearchOutput, error) {
	results := make([]contracts.ResearchResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			res, err := agent.ProcessResearchRequest(gctx, req)
			if err != nil {
				return fmt.Errorf("research %q: %w", req.Topic, err)
			}
			if res == nil {
				return fmt.Errorf("%w: research %q returned no result", ErrUnexpectedOutput, req.Topic)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &contracts.ResearchOutput{Results: results}, nil
}
