package pricing

import (
	"context"
	"sync"
	"time"
)

type tierLister interface {
	ListTiers(ctx context.Context) ([]Tier, error)
}

// CachedSource serves the tier list from memory, refreshing from the
// repository when the cache ages out or a refresh is forced. Cart views are
// derived far more often than admins retune tiers.
type CachedSource struct {
	repo tierLister
	ttl  time.Duration

	mu        sync.Mutex
	tiers     []Tier
	fetchedAt time.Time
}

// NewCachedSource wraps a tier repository with a TTL cache.
func NewCachedSource(repo tierLister, ttl time.Duration) *CachedSource {
	return &CachedSource{repo: repo, ttl: ttl}
}

// Tiers returns the cached tier list, fetching on first use or after the
// TTL expires. A fetch failure falls back to the stale cache when one
// exists.
func (s *CachedSource) Tiers(ctx context.Context) ([]Tier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < s.ttl
	if fresh {
		return s.tiers, nil
	}

	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		if s.fetchedAt.IsZero() {
			return nil, err
		}
		return s.tiers, nil
	}

	s.tiers = tiers
	s.fetchedAt = time.Now()
	return s.tiers, nil
}

// Refresh discards the cache so the next Tiers call hits the repository.
func (s *CachedSource) Refresh() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}
