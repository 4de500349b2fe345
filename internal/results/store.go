package results

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/logger"
	"github.com/wonny/aegis-ideas/pkg/redis"
)

// maxLocalEntries bounds the in-memory fallback
const maxLocalEntries = 1000

// Store keeps finished generation results for later lookup
// ⭐ SSOT: 생성 결과 캐싱은 이 구조체에서만
//
// Redis when enabled, otherwise an in-process map with the same TTL.
type Store struct {
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time

	mu    sync.RWMutex
	local map[string]localEntry
}

type localEntry struct {
	result    *contracts.IdeaGenerationResult
	expiresAt time.Time
}

// NewStore creates a result store; cache may be nil
func NewStore(cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		cache:  cache,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
		local:  make(map[string]localEntry),
	}
}

// SaveResult stores a result under its request ID
func (s *Store) SaveResult(ctx context.Context, result *contracts.IdeaGenerationResult) error {
	return s.put(ctx, redis.ResultKey(result.RequestID), result)
}

// SaveProfileRun stores a result as the latest run of a profile
func (s *Store) SaveProfileRun(ctx context.Context, profileID string, result *contracts.IdeaGenerationResult) error {
	return s.put(ctx, redis.ProfileRunKey(profileID), result)
}

// Result returns the stored result of a request
func (s *Store) Result(ctx context.Context, requestID string) (*contracts.IdeaGenerationResult, bool, error) {
	return s.get(ctx, redis.ResultKey(requestID))
}

// LatestProfileRun returns the latest stored result of a profile
func (s *Store) LatestProfileRun(ctx context.Context, profileID string) (*contracts.IdeaGenerationResult, bool, error) {
	return s.get(ctx, redis.ProfileRunKey(profileID))
}

func (s *Store) put(ctx context.Context, key string, result *contracts.IdeaGenerationResult) error {
	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			return fmt.Errorf("cache result %s: %w", key, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.local) >= maxLocalEntries {
		s.evictLocked()
	}
	s.local[key] = localEntry{result: result, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (*contracts.IdeaGenerationResult, bool, error) {
	if s.cache != nil && s.cache.Enabled() {
		var result contracts.IdeaGenerationResult
		found, err := s.cache.Get(ctx, key, &result)
		if err != nil || !found {
			return nil, false, err
		}
		return &result, true, nil
	}

	s.mu.RLock()
	entry, ok := s.local[key]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.result, true, nil
}

// evictLocked drops expired entries, then the one closest to expiry if still full
func (s *Store) evictLocked() {
	now := s.now()
	var oldestKey string
	var oldest time.Time

	for key, entry := range s.local {
		if now.After(entry.expiresAt) {
			delete(s.local, key)
			continue
		}
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}

	if len(s.local) >= maxLocalEntries && oldestKey != "" {
		delete(s.local, oldestKey)
	}
}

// CleanExpired removes expired entries from the in-memory fallback
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for key, entry := range s.local {
		if now.After(entry.expiresAt) {
			delete(s.local, key)
			count++
		}
	}

	if count > 0 {
		s.logger.WithField("count", count).Info("Cleaned expired results")
	}
	return count
}

// Len returns the number of in-memory entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.local)
}
