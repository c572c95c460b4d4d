// Package memory provides a process-local Repository. Uniqueness of id and value
// is enforced under a single mutex, which makes check-then-insert atomic.
package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

type StringRepository struct {
	mu      sync.RWMutex
	byID    map[domain.ID]*domain.AnalyzedString
	byValue map[string]domain.ID
	order   []domain.ID
}

func NewStringRepository() *StringRepository {
	return &StringRepository{
		byID:    make(map[domain.ID]*domain.AnalyzedString),
		byValue: make(map[string]domain.ID),
	}
}

func (r *StringRepository) FindByID(_ context.Context, id domain.ID) (*domain.AnalyzedString, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byID[id]), nil
}

func (r *StringRepository) FindByValue(_ context.Context, value string) (*domain.AnalyzedString, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byValue[value]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *StringRepository) Insert(_ context.Context, s *domain.AnalyzedString) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; ok {
		return errors.Wrapf(domain.ErrConflict, "id %s", s.ID)
	}
	if _, ok := r.byValue[s.Value]; ok {
		return errors.Wrap(domain.ErrConflict, "value already stored")
	}
	r.byID[s.ID] = clone(s)
	r.byValue[s.Value] = s.ID
	r.order = append(r.order, s.ID)
	return nil
}

func (r *StringRepository) DeleteByID(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byValue, rec.Value)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListAll returns records in insertion order.
func (r *StringRepository) ListAll(_ context.Context) ([]*domain.AnalyzedString, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.AnalyzedString, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.byID[id]))
	}
	return out, nil
}

// clone copies s so callers never share the stored frequency map.
func clone(s *domain.AnalyzedString) *domain.AnalyzedString {
	if s == nil {
		return nil
	}
	c := *s
	if s.Properties.CharacterFrequencyMap != nil {
		c.Properties.CharacterFrequencyMap = make(map[string]int, len(s.Properties.CharacterFrequencyMap))
		for k, v := range s.Properties.CharacterFrequencyMap {
			c.Properties.CharacterFrequencyMap[k] = v
		}
	}
	return &c
}
