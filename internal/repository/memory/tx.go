package memory

import (
	"context"
	"errors"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already finished")

// tx stages writes against a snapshot of the store and applies them on
// Commit. Ids are taken from the store sequence at insert time, so a
// rolled back insert burns its id exactly like a database sequence.
type tx[T domain.Entity] struct {
	store   *Store[T]
	staged  map[int64]T
	deleted map[int64]bool
	done    bool
}

func (t *tx[T]) lookup(id int64) (T, bool) {
	if t.deleted[id] {
		var zero T
		return zero, false
	}
	if row, ok := t.staged[id]; ok {
		return row, true
	}
	row, ok := t.store.rows[id]
	return row, ok
}

func (t *tx[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return zero, ErrTxDone
	}
	if err := t.store.consumeFailure("insert"); err != nil {
		return zero, err
	}
	if repository.IsNil(entity) {
		return zero, apperrors.NewStorage("insert", t.store.entity, errors.New("nil entity"))
	}
	if id := entity.EntityID(); id != 0 {
		if _, exists := t.lookup(id); exists {
			return zero, apperrors.Wrap(apperrors.ErrAlreadyExists,
				apperrors.CodeStorageFailed, t.store.entity+" already exists", 409)
		}
	}
	id := t.store.nextID
	t.store.nextID++
	row := t.store.clone(entity)
	row.SetEntityID(id)
	t.staged[id] = row
	delete(t.deleted, id)
	return t.store.clone(row), nil
}

func (t *tx[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return zero, ErrTxDone
	}
	if err := t.store.consumeFailure("update"); err != nil {
		return zero, err
	}
	if repository.IsNil(entity) {
		return zero, apperrors.NewStorage("update", t.store.entity, errors.New("nil entity"))
	}
	id := entity.EntityID()
	if _, ok := t.lookup(id); !ok {
		return zero, apperrors.NewNotFound(t.store.entity, id)
	}
	row := t.store.clone(entity)
	t.staged[id] = row
	return t.store.clone(row), nil
}

func (t *tx[T]) Delete(ctx context.Context, entity T) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	if err := t.store.consumeFailure("delete"); err != nil {
		return err
	}
	if repository.IsNil(entity) {
		return apperrors.NewStorage("delete", t.store.entity, errors.New("nil entity"))
	}
	id := entity.EntityID()
	if _, ok := t.lookup(id); !ok {
		return apperrors.NewNotFound(t.store.entity, id)
	}
	delete(t.staged, id)
	t.deleted[id] = true
	return nil
}

func (t *tx[T]) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	if err := t.store.consumeFailure("commit"); err != nil {
		t.done = true
		t.store.rollbacks++
		return err
	}
	for id := range t.deleted {
		delete(t.store.rows, id)
	}
	for id, row := range t.staged {
		t.store.rows[id] = row
	}
	t.done = true
	t.store.commits++
	return nil
}

func (t *tx[T]) Rollback(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.store.rollbacks++
	return nil
}
