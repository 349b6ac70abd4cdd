package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/repository"
)

func newUserStore() *Store[*domain.User] {
	return NewStore[*domain.User]("user", ShallowClone[domain.User]())
}

func storedUser(t *testing.T, s *Store[*domain.User], username string) *domain.User {
	t.Helper()
	u, err := domain.NewUserBuilder().
		Username(username).
		FirstName("Ada").
		LastName("Martens").
		Street("Dorpsstraat").
		Number(12).
		PostalCode(2000).
		City("Antwerpen").
		Role(domain.RoleTechnician).
		Status(domain.StatusActive).
		Build()
	require.NoError(t, err)
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	u, err = tx.Insert(context.Background(), u)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	return u
}

func TestStore_InsertVisibleOnlyAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	u, err := domain.NewUserBuilder().
		Username("ada").FirstName("Ada").LastName("Martens").
		Street("Dorpsstraat").Number(12).PostalCode(2000).City("Antwerpen").
		Role(domain.RoleTechnician).Status(domain.StatusActive).
		Build()
	require.NoError(t, err)

	inserted, err := tx.Insert(ctx, u)
	require.NoError(t, err)
	require.NotZero(t, inserted.ID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all, "staged insert must not be visible before commit")

	require.NoError(t, tx.Commit(ctx))

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, inserted.ID, all[0].ID)
}

func TestStore_RollbackDiscardsStagedWrites(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	u := storedUser(t, s, "ada")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	u.FirstName = "Renamed"
	_, err = tx.Update(ctx, u)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)
}

func TestStore_FinishedTxRejectsFurtherUse(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	require.ErrorIs(t, tx.Rollback(ctx), ErrTxDone)
	require.ErrorIs(t, tx.Commit(ctx), ErrTxDone)
	_, err = tx.Insert(ctx, &domain.User{})
	require.ErrorIs(t, err, ErrTxDone)
}

func TestStore_WithTxRollsBackExactlyOnceOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	boom := errors.New("disk full")
	s.FailNext("insert", boom)

	err := repository.WithTx[*domain.User](ctx, s, func(tx repository.Tx[*domain.User]) error {
		u := storedUserValue()
		_, err := tx.Insert(ctx, u)
		return err
	})
	require.Error(t, err)
	_, ok := apperrors.IsStorageError(err)
	require.True(t, ok)
	require.Equal(t, 1, s.RollbackCount())
	require.Equal(t, 0, s.CommitCount())
	require.Equal(t, 0, s.Len())
}

func storedUserValue() *domain.User {
	u, err := domain.NewUserBuilder().
		Username("ada").FirstName("Ada").LastName("Martens").
		Street("Dorpsstraat").Number(12).PostalCode(2000).City("Antwerpen").
		Role(domain.RoleTechnician).Status(domain.StatusActive).
		Build()
	if err != nil {
		panic(err)
	}
	return u
}

func TestStore_FindAllOrderedAndNeverNil(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Empty(t, all)

	first := storedUser(t, s, "ada")
	second := storedUser(t, s, "bram")
	third := storedUser(t, s, "cleo")

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{first.ID, second.ID, third.ID},
		[]int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestStore_InsertNilEntityFails(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, nil)
	_, ok := apperrors.IsStorageError(err)
	require.True(t, ok)
}

func TestStore_InsertExistingIDConflicts(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	u := storedUser(t, s, "ada")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, u)
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestStore_UpdateAndDeleteUnknownIDReturnNotFound(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	ghost := storedUserValue()
	ghost.ID = 404

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Update(ctx, ghost)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	nf, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok)
	require.Equal(t, "user", nf.Entity)

	err = tx.Delete(ctx, ghost)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_GetUnknownIDReturnsNotFound(t *testing.T) {
	s := newUserStore()
	_, err := s.Get(context.Background(), 99)
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "user", nf.Entity)
	require.EqualValues(t, 99, nf.ID)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	u := storedUser(t, s, "ada")

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	got.FirstName = "Mutated"

	again, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", again.FirstName)
}

func TestStore_DeleteThenCommitRemovesRow(t *testing.T) {
	ctx := context.Background()
	s := newUserStore()
	u := storedUser(t, s, "ada")

	err := repository.WithTx[*domain.User](ctx, s, func(tx repository.Tx[*domain.User]) error {
		return tx.Delete(ctx, u)
	})
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())
}
