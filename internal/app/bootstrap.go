// Package app is the composition root. Bootstrap stays orchestration-only:
// it wires repositories, services, observers and jobs, nothing else.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"plantkeeper.io/plantkeeper/internal/api/handlers"
	"plantkeeper.io/plantkeeper/internal/api/middleware"
	"plantkeeper.io/plantkeeper/internal/config"
	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/infrastructure"
	"plantkeeper.io/plantkeeper/internal/jobs"
	"plantkeeper.io/plantkeeper/internal/notification"
	"plantkeeper.io/plantkeeper/internal/pkg/worker"
	"plantkeeper.io/plantkeeper/internal/repository/postgres"
	"plantkeeper.io/plantkeeper/internal/service"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	DB     *infrastructure.DatabaseClients
	Pools  *worker.Pools
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		JobsPoolSize:    cfg.Worker.JobsPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	userRepo := postgres.NewUserRepo(db.Pool)
	siteRepo := postgres.NewSiteRepo(db.Pool)
	machineRepo := postgres.NewMachineRepo(db.Pool)
	maintenanceRepo := postgres.NewMaintenanceRepo(db.Pool)
	reportRepo := postgres.NewReportRepo(db.Pool)
	notificationRepo := postgres.NewNotificationRepo(db.Pool)

	dispatcher := domain.NewDispatcher()

	users := service.NewUserService(userRepo, dispatcher)
	sites := service.NewSiteService(siteRepo, machineRepo, users, dispatcher)
	machines := service.NewMachineService(machineRepo, sites, users, dispatcher)
	maintenances := service.NewMaintenanceService(maintenanceRepo, machines, users, dispatcher)
	reports := service.NewReportService(reportRepo, maintenances, sites, users, dispatcher)
	notifications := service.NewNotificationService(notificationRepo)

	// Inbox fan-out listens on the same dispatcher the services emit on.
	notification.NewTriggers(notifications, userRepo).Register(dispatcher)

	workers := river.NewWorkers()
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(db.Pool, cfg.Jobs.NotificationRetention))
	river.AddWorker(workers, jobs.NewMaintenanceDueWorker(machineRepo, notifications, pools, 0))
	if err := db.InitRiverClient(workers, cfg.Jobs); err != nil {
		pools.Shutdown()
		db.Close()
		return nil, fmt.Errorf("init river client: %w", err)
	}
	registerPeriodicJobs(db.RiverClient, cfg.Jobs)

	jwtCfg := middleware.JWTConfig{
		SigningKey: []byte(cfg.Security.JWTSigningKey),
		Issuer:     cfg.Security.JWTIssuer,
		ExpiresIn:  cfg.Security.TokenLifetime,
	}
	server := handlers.NewServer(handlers.ServerDeps{
		JWTCfg:        jwtCfg,
		Users:         users,
		Sites:         sites,
		Machines:      machines,
		Maintenances:  maintenances,
		Reports:       reports,
		Notifications: notifications,
		Pools:         pools,
	})

	return &Application{
		Config: cfg,
		Router: newRouter(server, jwtCfg.SigningKey),
		DB:     db,
		Pools:  pools,
	}, nil
}

// registerPeriodicJobs schedules the recurring background work: inbox
// retention cleanup once a day and the maintenance-due scan on the
// configured interval. Both run once on startup.
func registerPeriodicJobs(client *river.Client[pgx.Tx], cfg config.JobsConfig) {
	client.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.NotificationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)
	client.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.MaintenanceDueInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.MaintenanceDueArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)
}
