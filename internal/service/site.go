package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// SiteService manages the site aggregate. Sites hold a non-owning view of
// their machines; the machine aggregate owns the relation.
type SiteService struct {
	repo       repository.Repository[*domain.Site]
	machines   repository.Repository[*domain.Machine]
	users      *UserService
	dispatcher *domain.Dispatcher
	now        clock
}

// NewSiteService wires the site aggregate service.
func NewSiteService(
	repo repository.Repository[*domain.Site],
	machines repository.Repository[*domain.Machine],
	users *UserService,
	dispatcher *domain.Dispatcher,
) *SiteService {
	return &SiteService{
		repo:       repo,
		machines:   machines,
		users:      users,
		dispatcher: dispatcher,
		now:        systemClock,
	}
}

// SiteInput carries the caller-supplied fields for create and update.
type SiteInput struct {
	Name          string        `json:"name"`
	ResponsibleID int64         `json:"responsible_id"`
	Street        string        `json:"street"`
	Number        int           `json:"number"`
	PostalCode    int           `json:"postal_code"`
	City          string        `json:"city"`
	Status        domain.Status `json:"status"`
}

// SiteFilter selects a subset of the site list. Zero-valued fields do not
// filter; all read-side, no filter mutates state.
type SiteFilter struct {
	Name          string
	Status        domain.Status
	ResponsibleID int64
	MinMachines   *int
	MaxMachines   *int
	Query         string
}

// Create validates and persists a new site, then notifies observers.
func (s *SiteService) Create(ctx context.Context, actor policy.Actor, in SiteInput) (*domain.SiteDTO, error) {
	if err := policy.Check(actor, policy.OpSiteCreate); err != nil {
		return nil, err
	}
	responsible, err := s.resolveResponsible(ctx, in.ResponsibleID)
	if err != nil {
		return nil, err
	}
	site, err := s.builder(in, responsible).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Site](ctx, s.repo, func(tx repository.Tx[*domain.Site]) error {
		site, err = tx.Insert(ctx, site)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventSiteCreated, actor, site,
		fmt.Sprintf("site %s was created", site.Name))
	dto := domain.NewSiteDTO(site, responsible, nil)
	return &dto, nil
}

// Update replaces a site's fields. The target must exist before any
// builder work starts.
func (s *SiteService) Update(ctx context.Context, actor policy.Actor, id int64, in SiteInput) (*domain.SiteDTO, error) {
	if err := policy.Check(actor, policy.OpSiteUpdate); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	responsible, err := s.resolveResponsible(ctx, in.ResponsibleID)
	if err != nil {
		return nil, err
	}
	site, err := s.builder(in, responsible).ID(id).Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Site](ctx, s.repo, func(tx repository.Tx[*domain.Site]) error {
		site, err = tx.Update(ctx, site)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventSiteUpdated, actor, site,
		fmt.Sprintf("site %s was updated", site.Name))
	machines, err := s.machinesOf(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	dto := domain.NewSiteDTO(site, responsible, machines)
	return &dto, nil
}

// Delete removes a site. Refused while machines still reference it.
func (s *SiteService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.Check(actor, policy.OpSiteDelete); err != nil {
		return err
	}
	site, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	machines, err := s.machinesOf(ctx, id)
	if err != nil {
		return err
	}
	if len(machines) > 0 {
		return apperrors.Conflict(apperrors.CodeSiteHasMachines,
			fmt.Sprintf("site %s still has %d machines", site.Name, len(machines)))
	}
	err = repository.WithTx[*domain.Site](ctx, s.repo, func(tx repository.Tx[*domain.Site]) error {
		return tx.Delete(ctx, site)
	})
	if err != nil {
		return err
	}
	s.notify(ctx, domain.EventSiteDeleted, actor, site,
		fmt.Sprintf("site %s was deleted", site.Name))
	return nil
}

// Get returns one site projection with its resolved references.
func (s *SiteService) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.SiteDTO, error) {
	if err := policy.Check(actor, policy.OpSiteRead); err != nil {
		return nil, err
	}
	site, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := s.project(ctx, site)
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// List returns all site projections ordered by id.
func (s *SiteService) List(ctx context.Context, actor policy.Actor) ([]domain.SiteDTO, error) {
	if err := policy.Check(actor, policy.OpSiteRead); err != nil {
		return nil, err
	}
	return s.list(ctx)
}

// Filter returns the site projections matching every set criterion.
func (s *SiteService) Filter(ctx context.Context, actor policy.Actor, f SiteFilter) ([]domain.SiteDTO, error) {
	if err := policy.Check(actor, policy.OpSiteRead); err != nil {
		return nil, err
	}
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SiteDTO, 0, len(all))
	for _, dto := range all {
		if matchesSiteFilter(dto, f) {
			out = append(out, dto)
		}
	}
	return out, nil
}

// Resolve looks up a site entity for sibling services.
func (s *SiteService) Resolve(ctx context.Context, id int64) (*domain.Site, error) {
	return s.repo.Get(ctx, id)
}

func (s *SiteService) list(ctx context.Context) ([]domain.SiteDTO, error) {
	sites, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SiteDTO, 0, len(sites))
	for _, site := range sites {
		dto, err := s.project(ctx, site)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *SiteService) project(ctx context.Context, site *domain.Site) (*domain.SiteDTO, error) {
	responsible, err := s.users.Resolve(ctx, site.ResponsibleID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	machines, err := s.machinesOf(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	dto := domain.NewSiteDTO(site, responsible, machines)
	return &dto, nil
}

func (s *SiteService) machinesOf(ctx context.Context, siteID int64) ([]*domain.Machine, error) {
	all, err := s.machines.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Machine, 0)
	for _, m := range all {
		if m.SiteID == siteID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *SiteService) resolveResponsible(ctx context.Context, id int64) (*domain.User, error) {
	if id == 0 {
		// Missing responsible surfaces as a builder violation, not a
		// not-found error.
		return nil, nil
	}
	return s.users.Resolve(ctx, id)
}

func (s *SiteService) builder(in SiteInput, responsible *domain.User) *domain.SiteBuilder {
	return domain.NewSiteBuilder().
		Name(in.Name).
		Responsible(responsible).
		Street(in.Street).
		Number(in.Number).
		PostalCode(in.PostalCode).
		City(in.City).
		Status(in.Status)
}

func (s *SiteService) notify(ctx context.Context, typ domain.EventType, actor policy.Actor, site *domain.Site, msg string) {
	_ = s.dispatcher.Notify(ctx, domain.Event{
		Type:        typ,
		Aggregate:   "site",
		AggregateID: site.ID,
		ActorID:     actor.UserID,
		Message:     msg,
		OccurredAt:  s.now(),
	})
}

func matchesSiteFilter(dto domain.SiteDTO, f SiteFilter) bool {
	if f.Name != "" && !strings.EqualFold(dto.Name, f.Name) {
		return false
	}
	if f.Status != "" && dto.Status != f.Status {
		return false
	}
	if f.ResponsibleID != 0 && dto.Responsible.ID != f.ResponsibleID {
		return false
	}
	if f.MinMachines != nil && dto.MachineCount() < *f.MinMachines {
		return false
	}
	if f.MaxMachines != nil && dto.MachineCount() > *f.MaxMachines {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		hay := strings.ToLower(dto.Name + " " + dto.Address.Street + " " + dto.Address.City + " " + dto.Responsible.Name)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}
