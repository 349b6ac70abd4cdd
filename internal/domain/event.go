package domain

import "time"

// EventType defines the type of domain event raised by an aggregate service
// after a committed write.
type EventType string

const (
	EventSiteCreated EventType = "SITE_CREATED"
	EventSiteUpdated EventType = "SITE_UPDATED"
	EventSiteDeleted EventType = "SITE_DELETED"

	EventUserCreated EventType = "USER_CREATED"
	EventUserUpdated EventType = "USER_UPDATED"

	EventMachineCreated EventType = "MACHINE_CREATED"
	EventMachineUpdated EventType = "MACHINE_UPDATED"

	EventMaintenanceCreated   EventType = "MAINTENANCE_CREATED"
	EventMaintenanceUpdated   EventType = "MAINTENANCE_UPDATED"
	EventMaintenanceCompleted EventType = "MAINTENANCE_COMPLETED"

	EventReportCreated EventType = "REPORT_CREATED"
)

// Event is an immutable record of one committed aggregate mutation. It is
// dispatched synchronously after the write transaction commits, never
// before.
type Event struct {
	Type        EventType `json:"type"`
	Aggregate   string    `json:"aggregate"`
	AggregateID int64     `json:"aggregate_id"`
	ActorID     int64     `json:"actor_id"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}
