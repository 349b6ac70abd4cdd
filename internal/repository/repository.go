// Package repository defines the generic transactional CRUD contract every
// aggregate is persisted through. Repositories enforce storage-level
// existence rules only; business validation is strictly the builders'
// concern.
package repository

import (
	"context"
	"fmt"
	"reflect"

	"plantkeeper.io/plantkeeper/internal/domain"
)

// Repository is the read side plus the transaction entry point for one
// entity family.
type Repository[T domain.Entity] interface {
	// FindAll returns every persisted instance ordered by id. The result is
	// empty, never nil, when nothing is stored.
	FindAll(ctx context.Context) ([]T, error)

	// Get returns the instance with the given id or a NotFoundError carrying
	// the entity family name.
	Get(ctx context.Context, id int64) (T, error)

	// Begin opens a transaction. Every mutating call goes through a Tx.
	Begin(ctx context.Context) (Tx[T], error)
}

// Tx brackets mutating calls in explicit transaction boundaries. A Tx is
// finished by exactly one Commit or Rollback; either call invalidates it.
type Tx[T domain.Entity] interface {
	// Insert persists a new entity and assigns its identity. Fails on a nil
	// entity, and conflicts when an instance with a pre-set id already
	// exists.
	Insert(ctx context.Context, entity T) (T, error)

	// Update replaces the stored record. Fails with a NotFoundError when no
	// record with the entity's id exists.
	Update(ctx context.Context, entity T) (T, error)

	// Delete removes the stored record under the same not-found rule.
	Delete(ctx context.Context, entity T) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// WithTx runs fn inside one transaction: begin, perform the writes, commit
// on success, roll back exactly once on any failure before re-raising it.
func WithTx[T domain.Entity](ctx context.Context, repo Repository[T], fn func(tx Tx[T]) error) error {
	tx, err := repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback(ctx)
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil {
			return fmt.Errorf("%w: rolling back: %v", err, rerr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// IsNil reports whether the entity behind the interface is absent. Typed
// nil pointers do not compare equal to a nil interface, so implementations
// use this before dereferencing.
func IsNil(entity any) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
