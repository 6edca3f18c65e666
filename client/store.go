package client

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by a fetch whose response arrived after a newer
// fetch of the same store was started. Its result is discarded.
var ErrStale = errors.New("stale response discarded")

// State is a snapshot of a Store.
type State[T any] struct {
	Items   []T
	Total   int64
	Current *T
	Loading bool
	Err     error
	Params  Params
}

// Store caches one entity's list and detail. State changes only through
// its methods, and every mutation is followed by a re-fetch of the last
// list params; nothing is updated optimistically.
type Store[T any] struct {
	api API[T]

	mu        sync.Mutex
	listGen   uint64
	detailGen uint64
	state     State[T]
}

func NewStore[T any](api API[T]) *Store[T] {
	return &Store[T]{api: api}
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]T(nil), s.state.Items...)
	return st
}

// Fetch loads one page. Only the most recently started fetch may write
// the state; older ones return ErrStale.
func (s *Store[T]) Fetch(ctx context.Context, p Params) error {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.state.Loading = true
	s.state.Params = p
	s.mu.Unlock()

	page, err := s.api.List(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		return ErrStale
	}
	s.state.Loading = false
	if err != nil {
		s.state.Err = err
		return err
	}
	s.state.Items = page.Items
	s.state.Total = page.Total
	s.state.Err = nil
	return nil
}

// Load fetches one record into Current.
func (s *Store[T]) Load(ctx context.Context, publicID string) (*T, error) {
	s.mu.Lock()
	s.detailGen++
	gen := s.detailGen
	s.mu.Unlock()

	item, err := s.api.Get(ctx, publicID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.detailGen {
		return nil, ErrStale
	}
	if err != nil {
		s.state.Err = err
		return nil, err
	}
	s.state.Current = item
	return item, nil
}

func (s *Store[T]) Create(ctx context.Context, item *T) (*T, error) {
	created, err := s.api.Create(ctx, item)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.refetch(ctx)
	return created, nil
}

func (s *Store[T]) Update(ctx context.Context, publicID string, item *T) (*T, error) {
	updated, err := s.api.Update(ctx, publicID, item)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.mu.Lock()
	s.state.Current = updated
	s.mu.Unlock()
	s.refetch(ctx)
	return updated, nil
}

func (s *Store[T]) Delete(ctx context.Context, publicID string) error {
	if err := s.api.Delete(ctx, publicID); err != nil {
		s.fail(err)
		return err
	}
	s.refetch(ctx)
	return nil
}

func (s *Store[T]) fail(err error) {
	s.mu.Lock()
	s.state.Err = err
	s.mu.Unlock()
}

// refetch reloads the last list params. A failure is kept in State.Err;
// the mutation itself already succeeded.
func (s *Store[T]) refetch(ctx context.Context) {
	s.mu.Lock()
	p := s.state.Params
	s.mu.Unlock()
	_ = s.Fetch(ctx, p)
}
