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

// ReportService manages reports produced from maintenance events. Reports
// are write-once; there is no update or delete operation.
type ReportService struct {
	repo         repository.Repository[*domain.Report]
	maintenances *MaintenanceService
	sites        *SiteService
	users        *UserService
	dispatcher   *domain.Dispatcher
	now          clock
}

// NewReportService wires the report aggregate service.
func NewReportService(
	repo repository.Repository[*domain.Report],
	maintenances *MaintenanceService,
	sites *SiteService,
	users *UserService,
	dispatcher *domain.Dispatcher,
) *ReportService {
	return &ReportService{
		repo:         repo,
		maintenances: maintenances,
		sites:        sites,
		users:        users,
		dispatcher:   dispatcher,
		now:          systemClock,
	}
}

// ReportInput carries the caller-supplied fields for create.
type ReportInput struct {
	MaintenanceID int64     `json:"maintenance_id"`
	TechnicianID  int64     `json:"technician_id"`
	SiteID        int64     `json:"site_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	Reason        string    `json:"reason"`
	Remarks       string    `json:"remarks,omitempty"`
}

// Create validates and persists a new report. The referenced maintenance
// must exist and must have left the planned state; the builder rejects
// reports on planned events.
func (s *ReportService) Create(ctx context.Context, actor policy.Actor, in ReportInput) (*domain.ReportDTO, error) {
	if err := policy.Check(actor, policy.OpReportCreate); err != nil {
		return nil, err
	}
	maintenance, technician, site, err := s.resolveRefs(ctx, in)
	if err != nil {
		return nil, err
	}
	b := domain.NewReportBuilder().
		Maintenance(maintenance).
		Technician(technician).
		Site(site).
		Reason(in.Reason).
		Remarks(in.Remarks)
	if !in.PeriodStart.IsZero() {
		b = b.PeriodStart(in.PeriodStart)
	}
	if !in.PeriodEnd.IsZero() {
		b = b.PeriodEnd(in.PeriodEnd)
	}
	report, err := b.Build()
	if err != nil {
		return nil, err
	}
	err = repository.WithTx[*domain.Report](ctx, s.repo, func(tx repository.Tx[*domain.Report]) error {
		report, err = tx.Insert(ctx, report)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = s.dispatcher.Notify(ctx, domain.Event{
		Type:        domain.EventReportCreated,
		Aggregate:   "report",
		AggregateID: report.ID,
		ActorID:     actor.UserID,
		Message:     fmt.Sprintf("report %d for maintenance %d is available", report.ID, report.MaintenanceID),
		OccurredAt:  s.now(),
	})
	dto := domain.NewReportDTO(report, technician)
	return &dto, nil
}

// Get returns one report projection.
func (s *ReportService) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.ReportDTO, error) {
	if err := policy.Check(actor, policy.OpReportRead); err != nil {
		return nil, err
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, report)
}

// List returns all report projections ordered by id.
func (s *ReportService) List(ctx context.Context, actor policy.Actor) ([]domain.ReportDTO, error) {
	if err := policy.Check(actor, policy.OpReportRead); err != nil {
		return nil, err
	}
	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReportDTO, 0, len(reports))
	for _, r := range reports {
		dto, err := s.project(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *ReportService) resolveRefs(ctx context.Context, in ReportInput) (*domain.Maintenance, *domain.User, *domain.Site, error) {
	var maintenance *domain.Maintenance
	var technician *domain.User
	var site *domain.Site
	var err error
	if in.MaintenanceID != 0 {
		if maintenance, err = s.maintenances.Resolve(ctx, in.MaintenanceID); err != nil {
			return nil, nil, nil, err
		}
	}
	if in.TechnicianID != 0 {
		if technician, err = s.users.Resolve(ctx, in.TechnicianID); err != nil {
			return nil, nil, nil, err
		}
	}
	if in.SiteID != 0 {
		if site, err = s.sites.Resolve(ctx, in.SiteID); err != nil {
			return nil, nil, nil, err
		}
	}
	return maintenance, technician, site, nil
}

func (s *ReportService) project(ctx context.Context, r *domain.Report) (*domain.ReportDTO, error) {
	technician, err := s.users.Resolve(ctx, r.TechnicianID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	dto := domain.NewReportDTO(r, technician)
	return &dto, nil
}
