package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
	"plantkeeper.io/plantkeeper/internal/pkg/worker"
	"plantkeeper.io/plantkeeper/internal/repository"
	"plantkeeper.io/plantkeeper/internal/service"
)

// DefaultMaintenanceDueWindow is how far ahead the scan looks for machines
// whose next planned maintenance comes due.
const DefaultMaintenanceDueWindow = 7 * 24 * time.Hour

// MaintenanceDueArgs is a periodic job that scans for machines with an
// upcoming or overdue planned maintenance and notifies their technicians.
type MaintenanceDueArgs struct{}

// Kind returns the job kind identifier for the maintenance-due scan.
func (MaintenanceDueArgs) Kind() string { return "maintenance_due_scan" }

// InsertOpts ensures at most one scan is enqueued within the same day.
func (MaintenanceDueArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: 24 * time.Hour,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// MaintenanceDueWorker fans out one inbox notification per due machine to
// its assigned technician, through the jobs worker pool.
type MaintenanceDueWorker struct {
	river.WorkerDefaults[MaintenanceDueArgs]
	machines      repository.Repository[*domain.Machine]
	notifications *service.NotificationService
	pools         *worker.Pools
	window        time.Duration
	now           func() time.Time
}

// NewMaintenanceDueWorker creates the scan worker. Non-positive window
// falls back to the 7-day default. A nil pools runs the fan-out inline.
func NewMaintenanceDueWorker(
	machines repository.Repository[*domain.Machine],
	notifications *service.NotificationService,
	pools *worker.Pools,
	window time.Duration,
) *MaintenanceDueWorker {
	if window <= 0 {
		window = DefaultMaintenanceDueWindow
	}
	return &MaintenanceDueWorker{
		machines:      machines,
		notifications: notifications,
		pools:         pools,
		window:        window,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Work scans all machines and notifies the technician of every machine
// whose next-maintenance date falls inside the window.
func (w *MaintenanceDueWorker) Work(ctx context.Context, _ *river.Job[MaintenanceDueArgs]) error {
	if w == nil || w.machines == nil || w.notifications == nil {
		return fmt.Errorf("maintenance due worker is not initialized")
	}

	machines, err := w.machines.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("scan machines: %w", err)
	}

	deadline := w.now().Add(w.window)
	due := make([]*domain.Machine, 0)
	for _, m := range machines {
		if m.NextMaintenance != nil && !m.NextMaintenance.After(deadline) {
			due = append(due, m)
		}
	}
	if len(due) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, m := range due {
		m := m
		wg.Add(1)
		task := func(taskCtx context.Context) {
			defer wg.Done()
			w.notifyDue(taskCtx, m)
		}
		if w.pools != nil {
			if err := w.pools.Jobs.Submit(ctx, task); err != nil {
				wg.Done()
				logger.Warn("maintenance due fan-out submit failed",
					zap.Int64("machine_id", m.ID),
					zap.Error(err),
				)
			}
		} else {
			task(ctx)
		}
	}
	wg.Wait()

	logger.Info("maintenance due scan completed",
		zap.Int("machines_due", len(due)),
		zap.Duration("window", w.window),
	)
	return nil
}

func (w *MaintenanceDueWorker) notifyDue(ctx context.Context, m *domain.Machine) {
	msg := fmt.Sprintf("machine %s has maintenance planned for %s",
		m.Code, m.NextMaintenance.Format("2006-01-02"))
	if _, err := w.notifications.Record(ctx, m.TechnicianID,
		domain.NotificationMaintenanceDue, "Maintenance due", msg); err != nil {
		logger.Warn("failed to record maintenance due notification",
			zap.Int64("machine_id", m.ID),
			zap.Int64("technician_id", m.TechnicianID),
			zap.Error(err),
		)
	}
}
