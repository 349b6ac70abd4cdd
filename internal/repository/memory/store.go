// Package memory provides an in-memory Repository implementation with
// staged transactions. Services and tests run against it without a
// database; the semantics mirror the postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// Store holds one entity family. Reads copy entities in and out so callers
// can never mutate stored state outside a transaction.
type Store[T domain.Entity] struct {
	mu     sync.Mutex
	entity string
	clone  func(T) T
	nextID int64
	rows   map[int64]T

	commits   int
	rollbacks int
	failOp    string
	failErr   error
}

// ShallowClone builds the copy function for pointer-to-struct entities.
func ShallowClone[E any]() func(*E) *E {
	return func(p *E) *E {
		if p == nil {
			return nil
		}
		c := *p
		return &c
	}
}

// NewStore creates an empty store for the named entity family. The name is
// what NotFoundError and StorageError report.
func NewStore[T domain.Entity](entity string, clone func(T) T) *Store[T] {
	return &Store[T]{
		entity: entity,
		clone:  clone,
		nextID: 1,
		rows:   make(map[int64]T),
	}
}

func (s *Store[T]) FindAll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.clone(s.rows[id]))
	}
	return out, nil
}

func (s *Store[T]) Get(ctx context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, apperrors.NewNotFound(s.entity, id)
	}
	return s.clone(row), nil
}

func (s *Store[T]) Begin(ctx context.Context) (repository.Tx[T], error) {
	return &tx[T]{
		store:   s,
		staged:  make(map[int64]T),
		deleted: make(map[int64]bool),
	}, nil
}

// FailNext makes the next call of the named op ("insert", "update",
// "delete", "commit") return err. Test hook for storage-failure paths.
func (s *Store[T]) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOp = op
	s.failErr = err
}

func (s *Store[T]) consumeFailure(op string) error {
	if s.failOp == op && s.failErr != nil {
		err := s.failErr
		s.failOp, s.failErr = "", nil
		return apperrors.NewStorage(op, s.entity, err)
	}
	return nil
}

// CommitCount reports how many transactions committed against this store.
func (s *Store[T]) CommitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// RollbackCount reports how many transactions rolled back.
func (s *Store[T]) RollbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// Len reports the number of persisted rows.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
