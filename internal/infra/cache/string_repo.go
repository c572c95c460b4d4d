// Package cache wraps a Repository with an in-process read cache. Every
// successful write bumps a generation and flushes the cache; a read only fills
// the cache when no write completed while it was talking to the store, so a
// record deleted through this instance is never served again.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

const listAllKey = "list:all"

type StringRepository struct {
	next  domain.Repository
	cache *gocache.Cache

	mu  sync.Mutex
	gen uint64 // bumped on every successful write
}

// NewStringRepository caches reads from next for ttl.
func NewStringRepository(next domain.Repository, ttl, cleanupInterval time.Duration) *StringRepository {
	return &StringRepository{
		next:  next,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func (r *StringRepository) FindByID(ctx context.Context, id domain.ID) (*domain.AnalyzedString, error) {
	key := "id:" + string(id)
	if v, ok := r.cache.Get(key); ok {
		return v.(*domain.AnalyzedString), nil
	}
	gen := r.generation()
	s, err := r.next.FindByID(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	r.fill(gen, key, s)
	return s, nil
}

func (r *StringRepository) FindByValue(ctx context.Context, value string) (*domain.AnalyzedString, error) {
	key := "value:" + value
	if v, ok := r.cache.Get(key); ok {
		return v.(*domain.AnalyzedString), nil
	}
	gen := r.generation()
	s, err := r.next.FindByValue(ctx, value)
	if err != nil || s == nil {
		return s, err
	}
	r.fill(gen, key, s)
	return s, nil
}

func (r *StringRepository) Insert(ctx context.Context, s *domain.AnalyzedString) error {
	if err := r.next.Insert(ctx, s); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *StringRepository) DeleteByID(ctx context.Context, id domain.ID) error {
	if err := r.next.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// ListAll returns a fresh slice each call; the records themselves are shared
// and must be treated as read-only.
func (r *StringRepository) ListAll(ctx context.Context) ([]*domain.AnalyzedString, error) {
	if v, ok := r.cache.Get(listAllKey); ok {
		cached := v.([]*domain.AnalyzedString)
		out := make([]*domain.AnalyzedString, len(cached))
		copy(out, cached)
		return out, nil
	}
	gen := r.generation()
	all, err := r.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(gen, listAllKey, all)
	out := make([]*domain.AnalyzedString, len(all))
	copy(out, all)
	return out, nil
}

func (r *StringRepository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// fill caches v unless a write finished after gen was read; the value may
// predate that write.
func (r *StringRepository) fill(gen uint64, key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	r.cache.SetDefault(key, v)
}

func (r *StringRepository) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.cache.Flush()
}
