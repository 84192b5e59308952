package store

import (
	"context"
	"sync"

	"github.com/criyle/go-static-judge/submission"
)

var _ Store = &memoryStore{}

type memoryStore struct {
	store map[string]submission.Submission
	mu    sync.RWMutex
}

// NewMemoryStore create new memory submission store
func NewMemoryStore() Store {
	return &memoryStore{
		store: make(map[string]submission.Submission),
	}
}

func (s *memoryStore) Save(_ context.Context, sub *submission.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(sub)
	s.store[sub.ID] = clone(sub)
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id string) (*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.store[id]
	if !ok {
		return nil, submission.ErrNotFound
	}
	rt := clone(&sub)
	return &rt, nil
}

func (s *memoryStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.store[id]
	delete(s.store, id)
	return ok, nil
}

func (s *memoryStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := make([]string, 0, len(s.store))
	for n := range s.store {
		b = append(b, n)
	}
	return b, nil
}

func (s *memoryStore) Close() error {
	return nil
}

// clone copies the submission so callers never share the evaluatedAt pointer
func clone(s *submission.Submission) submission.Submission {
	c := *s
	if s.EvaluatedAt != nil {
		t := *s.EvaluatedAt
		c.EvaluatedAt = &t
	}
	return c
}
