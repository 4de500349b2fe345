package brain

import (
	"sort"
	"sync"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// RunRegistry tracks in-flight generation requests by request ID
// ⭐ SSOT: 진행 중 요청 상태는 여기서만 (프로세스 메모리, 재시작 시 소멸)
type RunRegistry struct {
	mu      sync.RWMutex
	entries map[string]*contracts.GenerationRequest
}

// NewRunRegistry creates an empty registry
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		entries: make(map[string]*contracts.GenerationRequest),
	}
}

// Register adds the request; false if its ID is already present
func (r *RunRegistry) Register(req *contracts.GenerationRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[req.RequestID]; exists {
		return false
	}
	r.entries[req.RequestID] = req
	return true
}

// Get returns the in-flight request for id
func (r *RunRegistry) Get(id string) (*contracts.GenerationRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.entries[id]
	return req, ok
}

// Contains reports whether id is in flight
func (r *RunRegistry) Contains(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Remove deletes the entry for id; false if absent
func (r *RunRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return false
	}
	delete(r.entries, id)
	return true
}

// release deletes the entry only while it still belongs to req.
// A cancelled ID may have been reused by a newer run in the meantime.
func (r *RunRegistry) release(req *contracts.GenerationRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.entries[req.RequestID]; exists && current == req {
		delete(r.entries, req.RequestID)
	}
}

// owns reports whether the entry for req.RequestID is req itself
func (r *RunRegistry) owns(req *contracts.GenerationRequest) bool {
	current, ok := r.Get(req.RequestID)
	return ok && current == req
}

// IDs returns the in-flight request IDs, sorted
func (r *RunRegistry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of in-flight requests
func (r *RunRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
