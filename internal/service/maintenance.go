package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// MaintenanceService manages the maintenance aggregate and owns the one
// genuine cross-aggregate rule in the system: completing a maintenance
// advances the owning machine's last-maintenance date through the machine
// service, in a second independent transaction.
type MaintenanceService struct {
	repo       repository.Repository[*domain.Maintenance]
	machines   *MachineService
	users      *UserService
	dispatcher *domain.Dispatcher
	now        clock
}

// NewMaintenanceService wires the maintenance aggregate service.
func NewMaintenanceService(
	repo repository.Repository[*domain.Maintenance],
	machines *MachineService,
	users *UserService,
	dispatcher *domain.Dispatcher,
) *MaintenanceService {
	return &MaintenanceService{
		repo:       repo,
		machines:   machines,
		users:      users,
		dispatcher: dispatcher,
		now:        systemClock,
	}
}

// MaintenanceInput carries the caller-supplied fields for create and update.
type MaintenanceInput struct {
	MachineID    int64                    `json:"machine_id"`
	TechnicianID int64                    `json:"technician_id"`
	PlannedDate  time.Time                `json:"planned_date"`
	Start        *time.Time               `json:"start,omitempty"`
	End          *time.Time               `json:"end,omitempty"`
	Reason       string                   `json:"reason"`
	Comments     string                   `json:"comments,omitempty"`
	Status       domain.MaintenanceStatus `json:"status"`
}

// Create validates and persists a new maintenance event. When the event is
// already completed the machine cascade runs after the commit; a cascade
// failure is returned alongside the projection of the committed event, it
// never undoes the maintenance write.
func (s *MaintenanceService) Create(ctx context.Context, actor policy.Actor, in MaintenanceInput) (*domain.MaintenanceDTO, error) {
	if err := policy.Check(actor, policy.OpMaintenanceCreate); err != nil {
		return nil, err
	}
	machine, technician, err := s.resolveRefs(ctx, in)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.builder(in, machine, technician).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Maintenance](ctx, s.repo, func(tx repository.Tx[*domain.Maintenance]) error {
		maintenance, err = tx.Insert(ctx, maintenance)
		return err
	})
	if err != nil {
		return nil, err
	}
	cascadeErr := s.cascade(ctx, maintenance)
	s.notifyLifecycle(ctx, domain.EventMaintenanceCreated, actor, maintenance)
	dto := domain.NewMaintenanceDTO(maintenance, machine, technician)
	return &dto, cascadeErr
}

// Update replaces a maintenance event. The target must exist before any
// builder work starts. The completion cascade applies under the same rules
// as Create.
func (s *MaintenanceService) Update(ctx context.Context, actor policy.Actor, id int64, in MaintenanceInput) (*domain.MaintenanceDTO, error) {
	if err := policy.Check(actor, policy.OpMaintenanceUpdate); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	machine, technician, err := s.resolveRefs(ctx, in)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.builder(in, machine, technician).ID(id).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Maintenance](ctx, s.repo, func(tx repository.Tx[*domain.Maintenance]) error {
		maintenance, err = tx.Update(ctx, maintenance)
		return err
	})
	if err != nil {
		return nil, err
	}
	cascadeErr := s.cascade(ctx, maintenance)
	s.notifyLifecycle(ctx, domain.EventMaintenanceUpdated, actor, maintenance)
	dto := domain.NewMaintenanceDTO(maintenance, machine, technician)
	return &dto, cascadeErr
}

// Get returns one maintenance projection with resolved references.
func (s *MaintenanceService) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.MaintenanceDTO, error) {
	if err := policy.Check(actor, policy.OpMaintenanceRead); err != nil {
		return nil, err
	}
	maintenance, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, maintenance)
}

// List returns all maintenance projections ordered by id.
func (s *MaintenanceService) List(ctx context.Context, actor policy.Actor) ([]domain.MaintenanceDTO, error) {
	if err := policy.Check(actor, policy.OpMaintenanceRead); err != nil {
		return nil, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MaintenanceDTO, 0, len(all))
	for _, m := range all {
		dto, err := s.project(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// ListByMachine returns the maintenance projections of one machine.
func (s *MaintenanceService) ListByMachine(ctx context.Context, actor policy.Actor, machineID int64) ([]domain.MaintenanceDTO, error) {
	if err := policy.Check(actor, policy.OpMaintenanceRead); err != nil {
		return nil, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MaintenanceDTO, 0)
	for _, m := range all {
		if m.MachineID != machineID {
			continue
		}
		dto, err := s.project(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// Resolve looks up a maintenance entity for sibling services.
func (s *MaintenanceService) Resolve(ctx context.Context, id int64) (*domain.Maintenance, error) {
	return s.repo.Get(ctx, id)
}

// cascade runs the completion rule after a committed write. Idempotent:
// re-running the same completed event leaves the machine untouched because
// AdvanceLastMaintenance never moves the date backward.
func (s *MaintenanceService) cascade(ctx context.Context, m *domain.Maintenance) error {
	if m.Status != domain.MaintenanceCompleted {
		return nil
	}
	executed, ok := m.ExecutionDate()
	if !ok {
		return nil
	}
	if _, err := s.machines.AdvanceLastMaintenance(ctx, m.MachineID, executed); err != nil {
		return apperrors.ErrCascadeFailed(err)
	}
	return nil
}

func (s *MaintenanceService) notifyLifecycle(ctx context.Context, typ domain.EventType, actor policy.Actor, m *domain.Maintenance) {
	_ = s.dispatcher.Notify(ctx, domain.Event{
		Type:        typ,
		Aggregate:   "maintenance",
		AggregateID: m.ID,
		ActorID:     actor.UserID,
		Message:     fmt.Sprintf("maintenance %d on machine %d: %s", m.ID, m.MachineID, m.Reason),
		OccurredAt:  s.now(),
	})
	if m.Status == domain.MaintenanceCompleted {
		_ = s.dispatcher.Notify(ctx, domain.Event{
			Type:        domain.EventMaintenanceCompleted,
			Aggregate:   "maintenance",
			AggregateID: m.ID,
			ActorID:     actor.UserID,
			Message:     fmt.Sprintf("maintenance %d on machine %d completed", m.ID, m.MachineID),
			OccurredAt:  s.now(),
		})
	}
}

func (s *MaintenanceService) resolveRefs(ctx context.Context, in MaintenanceInput) (*domain.Machine, *domain.User, error) {
	var machine *domain.Machine
	var technician *domain.User
	var err error
	if in.MachineID != 0 {
		if machine, err = s.machines.Resolve(ctx, in.MachineID); err != nil {
			return nil, nil, err
		}
	}
	if in.TechnicianID != 0 {
		if technician, err = s.users.Resolve(ctx, in.TechnicianID); err != nil {
			return nil, nil, err
		}
	}
	return machine, technician, nil
}

func (s *MaintenanceService) project(ctx context.Context, m *domain.Maintenance) (*domain.MaintenanceDTO, error) {
	machine, err := s.machines.Resolve(ctx, m.MachineID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	technician, err := s.users.Resolve(ctx, m.TechnicianID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	dto := domain.NewMaintenanceDTO(m, machine, technician)
	return &dto, nil
}

func (s *MaintenanceService) builder(in MaintenanceInput, machine *domain.Machine, technician *domain.User) *domain.MaintenanceBuilder {
	b := domain.NewMaintenanceBuilder().
		Machine(machine).
		Technician(technician).
		Reason(in.Reason).
		Comments(in.Comments).
		Status(in.Status)
	if !in.PlannedDate.IsZero() {
		b = b.PlannedDate(in.PlannedDate)
	}
	if in.Start != nil {
		b = b.Start(*in.Start)
	}
	if in.End != nil {
		b = b.End(*in.End)
	}
	return b
}
