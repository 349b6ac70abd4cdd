package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

func TestUserService_CreateHashesPasswordAndHidesIt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dto := f.seedUser(t, "ada", domain.RoleTechnician)

	stored, err := f.users.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, "s3cret!pass", stored.PasswordHash)
}

func TestUserService_DuplicateUsernameConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "ada", domain.RoleTechnician)

	_, err := f.userSvc.Create(ctx, adminActor, UserInput{
		Username:   "ada",
		FirstName:  "Other",
		LastName:   "Person",
		Street:     "Kerkstraat",
		Number:     1,
		PostalCode: 1000,
		City:       "Brussel",
		Role:       domain.RoleManager,
		Status:     domain.StatusActive,
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeUsernameTaken, appErr.Code)
}

func TestUserService_DeactivateIsSoftDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dto := f.seedUser(t, "ada", domain.RoleTechnician)

	out, err := f.userSvc.Deactivate(ctx, adminActor, dto.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInactive, out.Status)

	// The record survives deactivation.
	require.Equal(t, 1, f.users.Len())

	// Deactivating twice is a no-op, not an error.
	again, err := f.userSvc.Deactivate(ctx, adminActor, dto.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInactive, again.Status)
}

func TestUserService_AuthenticateChecksPasswordAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dto := f.seedUser(t, "ada", domain.RoleTechnician)

	user, err := f.userSvc.Authenticate(ctx, "ada", "s3cret!pass")
	require.NoError(t, err)
	require.Equal(t, dto.ID, user.ID)

	_, err = f.userSvc.Authenticate(ctx, "ada", "wrong")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.userSvc.Deactivate(ctx, adminActor, dto.ID)
	require.NoError(t, err)
	_, err = f.userSvc.Authenticate(ctx, "ada", "s3cret!pass")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserService_UpdateKeepsHashWhenPasswordOmitted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dto := f.seedUser(t, "ada", domain.RoleTechnician)
	before, err := f.users.Get(ctx, dto.ID)
	require.NoError(t, err)

	_, err = f.userSvc.Update(ctx, adminActor, dto.ID, UserInput{
		Username:   "ada",
		FirstName:  "Renamed",
		LastName:   "User",
		Street:     "Stationsstraat",
		Number:     7,
		PostalCode: 3500,
		City:       "Hasselt",
		Role:       domain.RoleTechnician,
		Status:     domain.StatusActive,
	})
	require.NoError(t, err)

	after, err := f.users.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.Equal(t, before.PasswordHash, after.PasswordHash)
	require.Equal(t, "Renamed", after.FirstName)
}

func TestUserService_ValidationCollectsAllViolations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.userSvc.Create(ctx, adminActor, UserInput{})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 9)
	require.Equal(t, 0, f.users.Len())
}
