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

// MachineService manages the machine aggregate. It also carries the
// write side of the maintenance-completion cascade: advancing a machine's
// last-maintenance date in its own transaction.
type MachineService struct {
	repo       repository.Repository[*domain.Machine]
	sites      *SiteService
	users      *UserService
	dispatcher *domain.Dispatcher
	now        clock
}

// NewMachineService wires the machine aggregate service.
func NewMachineService(
	repo repository.Repository[*domain.Machine],
	sites *SiteService,
	users *UserService,
	dispatcher *domain.Dispatcher,
) *MachineService {
	return &MachineService{
		repo:       repo,
		sites:      sites,
		users:      users,
		dispatcher: dispatcher,
		now:        systemClock,
	}
}

// MachineInput carries the caller-supplied fields for create and update.
type MachineInput struct {
	SiteID           int64                   `json:"site_id"`
	TechnicianID     int64                   `json:"technician_id"`
	Code             string                  `json:"code"`
	Location         string                  `json:"location"`
	Product          string                  `json:"product"`
	Status           domain.MachineStatus    `json:"status"`
	ProductionStatus domain.ProductionStatus `json:"production_status"`
	LastMaintenance  *time.Time              `json:"last_maintenance,omitempty"`
	NextMaintenance  *time.Time              `json:"next_maintenance,omitempty"`
}

// Create validates and persists a new machine.
func (s *MachineService) Create(ctx context.Context, actor policy.Actor, in MachineInput) (*domain.MachineDTO, error) {
	if err := policy.Check(actor, policy.OpMachineCreate); err != nil {
		return nil, err
	}
	site, technician, err := s.resolveRefs(ctx, in)
	if err != nil {
		return nil, err
	}
	machine, err := s.builder(in, site, technician).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Machine](ctx, s.repo, func(tx repository.Tx[*domain.Machine]) error {
		machine, err = tx.Insert(ctx, machine)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventMachineCreated, actor, machine,
		fmt.Sprintf("machine %s was created", machine.Code))
	dto := domain.NewMachineDTO(machine, technician, s.now())
	return &dto, nil
}

// Update replaces a machine's fields. The target must exist before any
// builder work starts.
func (s *MachineService) Update(ctx context.Context, actor policy.Actor, id int64, in MachineInput) (*domain.MachineDTO, error) {
	if err := policy.Check(actor, policy.OpMachineUpdate); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	site, technician, err := s.resolveRefs(ctx, in)
	if err != nil {
		return nil, err
	}
	machine, err := s.builder(in, site, technician).ID(id).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Machine](ctx, s.repo, func(tx repository.Tx[*domain.Machine]) error {
		machine, err = tx.Update(ctx, machine)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventMachineUpdated, actor, machine,
		fmt.Sprintf("machine %s was updated", machine.Code))
	dto := domain.NewMachineDTO(machine, technician, s.now())
	return &dto, nil
}

// Get returns one machine projection with derived maintenance figures.
func (s *MachineService) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.MachineDTO, error) {
	if err := policy.Check(actor, policy.OpMachineRead); err != nil {
		return nil, err
	}
	machine, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, machine)
}

// List returns all machine projections ordered by id.
func (s *MachineService) List(ctx context.Context, actor policy.Actor) ([]domain.MachineDTO, error) {
	if err := policy.Check(actor, policy.OpMachineRead); err != nil {
		return nil, err
	}
	machines, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MachineDTO, 0, len(machines))
	for _, m := range machines {
		dto, err := s.project(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// ListBySite returns the machine projections belonging to one site.
func (s *MachineService) ListBySite(ctx context.Context, actor policy.Actor, siteID int64) ([]domain.MachineDTO, error) {
	if err := policy.Check(actor, policy.OpMachineRead); err != nil {
		return nil, err
	}
	machines, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MachineDTO, 0)
	for _, m := range machines {
		if m.SiteID != siteID {
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

// Resolve looks up a machine entity for sibling services.
func (s *MachineService) Resolve(ctx context.Context, id int64) (*domain.Machine, error) {
	return s.repo.Get(ctx, id)
}

// AdvanceLastMaintenance moves the machine's last-maintenance date forward
// to executed, in its own transaction. It is idempotent: when the recorded
// date is already at or past executed, nothing is written and false is
// returned. Called by the maintenance completion cascade, never directly
// by external callers, so no policy check applies.
func (s *MachineService) AdvanceLastMaintenance(ctx context.Context, machineID int64, executed time.Time) (bool, error) {
	machine, err := s.repo.Get(ctx, machineID)
	if err != nil {
		return false, err
	}
	if machine.LastMaintenance != nil && !executed.After(*machine.LastMaintenance) {
		return false, nil
	}
	machine.LastMaintenance = &executed
	err = repository.WithTx[*domain.Machine](ctx, s.repo, func(tx repository.Tx[*domain.Machine]) error {
		machine, err = tx.Update(ctx, machine)
		return err
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MachineService) resolveRefs(ctx context.Context, in MachineInput) (*domain.Site, *domain.User, error) {
	var site *domain.Site
	var technician *domain.User
	var err error
	if in.SiteID != 0 {
		if site, err = s.sites.Resolve(ctx, in.SiteID); err != nil {
			return nil, nil, err
		}
	}
	if in.TechnicianID != 0 {
		if technician, err = s.users.Resolve(ctx, in.TechnicianID); err != nil {
			return nil, nil, err
		}
	}
	return site, technician, nil
}

func (s *MachineService) project(ctx context.Context, m *domain.Machine) (*domain.MachineDTO, error) {
	technician, err := s.users.Resolve(ctx, m.TechnicianID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	dto := domain.NewMachineDTO(m, technician, s.now())
	return &dto, nil
}

func (s *MachineService) builder(in MachineInput, site *domain.Site, technician *domain.User) *domain.MachineBuilder {
	b := domain.NewMachineBuilder().
		Site(site).
		Technician(technician).
		Code(in.Code).
		Location(in.Location).
		Product(in.Product).
		Status(in.Status).
		ProductionStatus(in.ProductionStatus)
	if in.LastMaintenance != nil {
		b = b.LastMaintenance(*in.LastMaintenance)
	}
	if in.NextMaintenance != nil {
		b = b.NextMaintenance(*in.NextMaintenance)
	}
	return b
}

func (s *MachineService) notify(ctx context.Context, typ domain.EventType, actor policy.Actor, m *domain.Machine, msg string) {
	_ = s.dispatcher.Notify(ctx, domain.Event{
		Type:        typ,
		Aggregate:   "machine",
		AggregateID: m.ID,
		ActorID:     actor.UserID,
		Message:     msg,
		OccurredAt:  s.now(),
	})
}
