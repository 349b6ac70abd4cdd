package domain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"plantkeeper.io/plantkeeper/internal/pkg/logger"
)

// Observer reacts to a domain event.
type Observer func(ctx context.Context, event Event) error

// Dispatcher routes domain events to registered observers. It is the
// subject side of the change-propagation mechanism: aggregate services
// notify it after a committed write and registered observers (such as the
// notification triggers) react.
type Dispatcher struct {
	observers map[EventType][]Observer
	mu        sync.RWMutex
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		observers: make(map[EventType][]Observer),
	}
}

// Register subscribes an observer to an event type. Observers are invoked
// in registration order.
func (d *Dispatcher) Register(eventType EventType, obs Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[eventType] = append(d.observers[eventType], obs)
}

// ObserverCount returns the number of observers registered for a type.
func (d *Dispatcher) ObserverCount(eventType EventType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers[eventType])
}

// Notify dispatches an event to all registered observers, synchronously and
// in registration order, on the caller's execution context. A failing
// observer is logged and the remaining observers still run (best-effort
// delivery); the first failure is returned so callers can surface it
// separately without undoing the already-committed write.
func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	d.mu.RLock()
	observers := d.observers[event.Type]
	d.mu.RUnlock()

	if len(observers) == 0 {
		return nil
	}

	var firstErr error
	for _, obs := range observers {
		if err := obs(ctx, event); err != nil {
			logger.Error("observer failed",
				zap.String("event_type", string(event.Type)),
				zap.String("aggregate", event.Aggregate),
				zap.Int64("aggregate_id", event.AggregateID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("observer for %s failed: %w", event.Type, err)
			}
		}
	}

	return firstErr
}
