package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

func TestSiteService_CreateResolvesResponsibleAndNotifies(t *testing.T) {
	f := newFixture(t)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)

	var notified []domain.Event
	f.dispatcher.Register(domain.EventSiteCreated, func(ctx context.Context, e domain.Event) error {
		notified = append(notified, e)
		return nil
	})

	dto := f.seedSite(t, "Plant North", resp.ID)
	require.Equal(t, resp.ID, dto.Responsible.ID)
	require.Len(t, notified, 1)
	require.Equal(t, dto.ID, notified[0].AggregateID)
}

func TestSiteService_CreateWithUnknownResponsibleFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.siteSvc.Create(ctx, adminActor, SiteInput{
		Name:          "Plant North",
		ResponsibleID: 999,
		Street:        "Industrielaan",
		Number:        42,
		PostalCode:    2000,
		City:          "Antwerpen",
		Status:        domain.StatusActive,
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, 0, f.sites.Len())
}

func TestSiteService_MissingResponsibleIsBuilderViolationNotNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.siteSvc.Create(ctx, adminActor, SiteInput{
		Name:       "Plant North",
		Street:     "Industrielaan",
		Number:     42,
		PostalCode: 2000,
		City:       "Antwerpen",
		Status:     domain.StatusActive,
	})
	verr, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Contains(t, verr.Fields(), "employee")
}

func TestSiteService_DTOCarriesMachineView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	machine := f.seedMachine(t, site.ID, tech.ID, nil)

	dto, err := f.siteSvc.Get(ctx, adminActor, site.ID)
	require.NoError(t, err)
	require.Equal(t, 1, dto.MachineCount())
	require.Equal(t, machine.ID, dto.Machines[0].ID)
}

func TestSiteService_FilterCombinesCriteria(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	respA := f.seedUser(t, "resp-a", domain.RoleResponsible)
	respB := f.seedUser(t, "resp-b", domain.RoleResponsible)
	north := f.seedSite(t, "Plant North", respA.ID)
	f.seedSite(t, "Plant South", respB.ID)
	f.seedMachine(t, north.ID, tech.ID, nil)

	one := 1
	got, err := f.siteSvc.Filter(ctx, adminActor, SiteFilter{
		ResponsibleID: respA.ID,
		MinMachines:   &one,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, north.ID, got[0].ID)

	got, err = f.siteSvc.Filter(ctx, adminActor, SiteFilter{Query: "south"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Plant South", got[0].Name)

	got, err = f.siteSvc.Filter(ctx, adminActor, SiteFilter{MaxMachines: &one})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSiteService_DeleteRefusedWhileMachinesRemain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	f.seedMachine(t, site.ID, tech.ID, nil)

	err := f.siteSvc.Delete(ctx, adminActor, site.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSiteHasMachines, appErr.Code)
	require.Equal(t, 1, f.sites.Len())
}

func TestSiteService_DeleteRemovesEmptySite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)

	require.NoError(t, f.siteSvc.Delete(ctx, adminActor, site.ID))
	require.Equal(t, 0, f.sites.Len())

	err := f.siteSvc.Delete(ctx, adminActor, site.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
