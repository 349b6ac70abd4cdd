package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository/memory"
)

func init() {
	_ = logger.Init("error", "json")
}

// fixture wires every aggregate service over in-memory stores, the same
// way bootstrap wires them over postgres.
type fixture struct {
	users         *memory.Store[*domain.User]
	sites         *memory.Store[*domain.Site]
	machines      *memory.Store[*domain.Machine]
	maintenances  *memory.Store[*domain.Maintenance]
	reports       *memory.Store[*domain.Report]
	notifications *memory.Store[*domain.Notification]

	dispatcher *domain.Dispatcher

	userSvc         *UserService
	siteSvc         *SiteService
	machineSvc      *MachineService
	maintenanceSvc  *MaintenanceService
	reportSvc       *ReportService
	notificationSvc *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:         memory.NewStore[*domain.User]("user", memory.ShallowClone[domain.User]()),
		sites:         memory.NewStore[*domain.Site]("site", memory.ShallowClone[domain.Site]()),
		machines:      memory.NewStore[*domain.Machine]("machine", memory.ShallowClone[domain.Machine]()),
		maintenances:  memory.NewStore[*domain.Maintenance]("maintenance", memory.ShallowClone[domain.Maintenance]()),
		reports:       memory.NewStore[*domain.Report]("report", memory.ShallowClone[domain.Report]()),
		notifications: memory.NewStore[*domain.Notification]("notification", memory.ShallowClone[domain.Notification]()),
		dispatcher:    domain.NewDispatcher(),
	}
	f.userSvc = NewUserService(f.users, f.dispatcher)
	f.siteSvc = NewSiteService(f.sites, f.machines, f.userSvc, f.dispatcher)
	f.machineSvc = NewMachineService(f.machines, f.siteSvc, f.userSvc, f.dispatcher)
	f.maintenanceSvc = NewMaintenanceService(f.maintenances, f.machineSvc, f.userSvc, f.dispatcher)
	f.reportSvc = NewReportService(f.reports, f.maintenanceSvc, f.siteSvc, f.userSvc, f.dispatcher)
	f.notificationSvc = NewNotificationService(f.notifications)
	return f
}

var adminActor = policy.Actor{UserID: 1, Role: domain.RoleAdministrator}

func (f *fixture) seedUser(t *testing.T, username string, role domain.Role) *domain.UserDTO {
	t.Helper()
	dto, err := f.userSvc.Create(context.Background(), adminActor, UserInput{
		Username:   username,
		Password:   "s3cret!pass",
		FirstName:  "Test",
		LastName:   "User",
		Street:     "Stationsstraat",
		Number:     7,
		PostalCode: 3500,
		City:       "Hasselt",
		Role:       role,
		Status:     domain.StatusActive,
	})
	require.NoError(t, err)
	return dto
}

func (f *fixture) seedSite(t *testing.T, name string, responsibleID int64) *domain.SiteDTO {
	t.Helper()
	dto, err := f.siteSvc.Create(context.Background(), adminActor, SiteInput{
		Name:          name,
		ResponsibleID: responsibleID,
		Street:        "Industrielaan",
		Number:        42,
		PostalCode:    2000,
		City:          "Antwerpen",
		Status:        domain.StatusActive,
	})
	require.NoError(t, err)
	return dto
}

func (f *fixture) seedMachine(t *testing.T, siteID, technicianID int64, last *time.Time) *domain.MachineDTO {
	t.Helper()
	dto, err := f.machineSvc.Create(context.Background(), adminActor, MachineInput{
		SiteID:           siteID,
		TechnicianID:     technicianID,
		Code:             "MX-200",
		Location:         "hall B",
		Product:          "gearboxes",
		Status:           domain.MachineOperational,
		ProductionStatus: domain.ProductionProducing,
		LastMaintenance:  last,
	})
	require.NoError(t, err)
	return dto
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timeAt(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}
