package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/policy"
)

func completedInput(machineID, technicianID int64, executed time.Time) MaintenanceInput {
	start := executed.Add(-2 * time.Hour)
	return MaintenanceInput{
		MachineID:    machineID,
		TechnicianID: technicianID,
		PlannedDate:  executed.Truncate(24 * time.Hour),
		Start:        &start,
		End:          &executed,
		Reason:       "replace bearings",
		Status:       domain.MaintenanceCompleted,
	}
}

func TestMaintenance_CompletionAdvancesMachineLastMaintenance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	jan := date(2025, 1, 1)
	machine := f.seedMachine(t, site.ID, tech.ID, &jan)
	updatesBefore := f.machines.CommitCount()

	executed := date(2025, 6, 1)
	dto, err := f.maintenanceSvc.Create(ctx, adminActor, completedInput(machine.ID, tech.ID, executed))
	require.NoError(t, err)
	require.Equal(t, domain.MaintenanceCompleted, dto.Status)

	got, err := f.machines.Get(ctx, machine.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMaintenance)
	require.True(t, got.LastMaintenance.Equal(executed))
	require.Equal(t, updatesBefore+1, f.machines.CommitCount(), "exactly one machine write")
}

func TestMaintenance_CompletionWithOlderExecutionDateLeavesMachineAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	recorded := date(2025, 6, 1)
	machine := f.seedMachine(t, site.ID, tech.ID, &recorded)
	updatesBefore := f.machines.CommitCount()

	_, err := f.maintenanceSvc.Create(ctx, adminActor,
		completedInput(machine.ID, tech.ID, date(2025, 1, 1)))
	require.NoError(t, err)

	got, err := f.machines.Get(ctx, machine.ID)
	require.NoError(t, err)
	require.True(t, got.LastMaintenance.Equal(recorded), "date must not move backward")
	require.Equal(t, updatesBefore, f.machines.CommitCount(), "no machine write")
}

func TestMaintenance_CascadeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	machine := f.seedMachine(t, site.ID, tech.ID, nil)

	executed := date(2025, 6, 1)
	in := completedInput(machine.ID, tech.ID, executed)
	created, err := f.maintenanceSvc.Create(ctx, adminActor, in)
	require.NoError(t, err)
	writesAfterFirst := f.machines.CommitCount()

	// Re-running the same completed update must not write the machine again.
	_, err = f.maintenanceSvc.Update(ctx, adminActor, created.ID, in)
	require.NoError(t, err)

	got, err := f.machines.Get(ctx, machine.ID)
	require.NoError(t, err)
	require.True(t, got.LastMaintenance.Equal(executed))
	require.Equal(t, writesAfterFirst, f.machines.CommitCount())
}

func TestMaintenance_CascadeFailureSurfacedWithoutUndoingWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	machine := f.seedMachine(t, site.ID, tech.ID, nil)

	f.machines.FailNext("update", errors.New("connection reset"))

	dto, err := f.maintenanceSvc.Create(ctx, adminActor,
		completedInput(machine.ID, tech.ID, date(2025, 6, 1)))
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeCascadeFailed, appErr.Code)
	require.NotNil(t, dto, "committed maintenance is still returned")

	// The maintenance row committed even though the cascade failed.
	require.Equal(t, 1, f.maintenances.Len())
	got, err := f.machines.Get(ctx, machine.ID)
	require.NoError(t, err)
	require.Nil(t, got.LastMaintenance)
}

func TestMaintenance_ValidationFailureOpensNoTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.maintenanceSvc.Create(ctx, adminActor, MaintenanceInput{})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, 0, f.maintenances.CommitCount())
	require.Equal(t, 0, f.maintenances.RollbackCount())
	require.Equal(t, 0, f.maintenances.Len())
}

func TestMaintenance_UpdateUnknownIDFailsBeforeBuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Invalid input too: the not-found check must win, no builder work.
	_, err := f.maintenanceSvc.Update(ctx, adminActor, 404, MaintenanceInput{})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	var vErr *apperrors.ValidationError
	require.False(t, errors.As(err, &vErr))
}

func TestMaintenance_UnknownMachineRefAbortsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)

	_, err := f.maintenanceSvc.Create(ctx, adminActor,
		completedInput(999, tech.ID, date(2025, 6, 1)))
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, 0, f.maintenances.Len())
}

func TestMaintenance_PolicyDenialIsHardFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := policy.Actor{UserID: 9, Role: domain.RoleTechnician}

	// Technicians may not touch users.
	_, err := f.userSvc.Create(ctx, actor, UserInput{Username: "x"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodePermissionDenied, appErr.Code)
	require.Equal(t, 0, f.users.Len())
}

func TestMaintenance_CompletedEventNotifiesObservers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tech := f.seedUser(t, "tech", domain.RoleTechnician)
	resp := f.seedUser(t, "resp", domain.RoleResponsible)
	site := f.seedSite(t, "Plant North", resp.ID)
	machine := f.seedMachine(t, site.ID, tech.ID, nil)

	var events []domain.EventType
	f.dispatcher.Register(domain.EventMaintenanceCompleted, func(ctx context.Context, e domain.Event) error {
		events = append(events, e.Type)
		// Observer runs after the commit.
		require.Equal(t, 1, f.maintenances.Len())
		return nil
	})

	_, err := f.maintenanceSvc.Create(ctx, adminActor,
		completedInput(machine.ID, tech.ID, date(2025, 6, 1)))
	require.NoError(t, err)
	require.Equal(t, []domain.EventType{domain.EventMaintenanceCompleted}, events)
}
