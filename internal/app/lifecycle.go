package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plantkeeper.io/plantkeeper/internal/pkg/logger"
	"plantkeeper.io/plantkeeper/internal/pkg/worker"
)

// Start starts the background services (River workers, pool metrics
// reporter).
func (a *Application) Start(ctx context.Context) error {
	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Start(ctx); err != nil {
			return fmt.Errorf("start river client: %w", err)
		}
		logger.Info("River client started, jobs will now be consumed")
	}
	if a.Pools != nil {
		if err := a.Pools.SubmitDetached("general", poolMetricsLoop(a.Pools, time.Minute)); err != nil {
			logger.Warn("failed to start pool metrics reporter", zap.Error(err))
		}
	}
	return nil
}

// poolMetricsLoop periodically logs pool utilization until the service
// lifecycle context ends.
func poolMetricsLoop(pools *worker.Pools, interval time.Duration) worker.Task {
	return func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Debug("worker pool metrics", zap.Any("pools", pools.Metrics()))
			}
		}
	}
}

// Shutdown gracefully shuts down all application components.
func (a *Application) Shutdown() {
	shutdownCtx := context.Background()

	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop river client", zap.Error(err))
		}
		logger.Info("River client stopped")
	}

	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
