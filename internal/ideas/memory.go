package ideas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// MemoryRepository keeps drafts in process memory (used when no database is configured)
type MemoryRepository struct {
	mu    sync.RWMutex
	ideas map[string]*contracts.InvestmentIdea
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ideas: make(map[string]*contracts.InvestmentIdea),
		now:   time.Now,
	}
}

// CreateInvestmentIdea stores a new draft and returns it
func (r *MemoryRepository) CreateInvestmentIdea(ctx context.Context, req *contracts.CreateIdeaRequest) (*contracts.InvestmentIdea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idea := newIdea(req, r.now().UTC())

	r.mu.Lock()
	r.ideas[idea.ID] = idea
	r.mu.Unlock()

	return cloneIdea(idea), nil
}

// GetInvestmentIdea returns the draft with the given ID
func (r *MemoryRepository) GetInvestmentIdea(ctx context.Context, id string) (*contracts.InvestmentIdea, error) {
	r.mu.RLock()
	idea, ok := r.ideas[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
	}
	return cloneIdea(idea), nil
}

// Len returns the number of stored drafts
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ideas)
}
