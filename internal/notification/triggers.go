// Package notification bridges domain events to the notification inbox.
// Triggers register observers on the dispatcher; each observer writes a
// Notification row in its own transaction, after the triggering write has
// committed. Delivery is best-effort: a failed observer never undoes the
// committed write.
package notification

import (
	"context"

	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/repository"
	"plantkeeper.io/plantkeeper/internal/service"
)

// Triggers owns the observer set that turns domain events into inbox rows.
type Triggers struct {
	notifications *service.NotificationService
	users         repository.Repository[*domain.User]
}

// NewTriggers wires the notification triggers.
func NewTriggers(notifications *service.NotificationService, users repository.Repository[*domain.User]) *Triggers {
	return &Triggers{notifications: notifications, users: users}
}

// Register subscribes every trigger on the dispatcher. Call once during
// bootstrap, before the first write.
func (t *Triggers) Register(d *domain.Dispatcher) {
	for _, typ := range []domain.EventType{
		domain.EventSiteCreated, domain.EventSiteUpdated, domain.EventSiteDeleted,
	} {
		d.Register(typ, t.fanOut(domain.NotificationSiteChange, "Site changed",
			domain.RoleAdministrator, domain.RoleManager))
	}
	for _, typ := range []domain.EventType{domain.EventUserCreated, domain.EventUserUpdated} {
		d.Register(typ, t.fanOut(domain.NotificationUserChange, "User changed",
			domain.RoleAdministrator))
	}
	for _, typ := range []domain.EventType{domain.EventMachineCreated, domain.EventMachineUpdated} {
		d.Register(typ, t.fanOut(domain.NotificationMachineChange, "Machine changed",
			domain.RoleAdministrator, domain.RoleResponsible))
	}
	d.Register(domain.EventMaintenanceCompleted, t.fanOut(
		domain.NotificationMaintenanceDone, "Maintenance completed",
		domain.RoleAdministrator, domain.RoleManager, domain.RoleResponsible))
	d.Register(domain.EventReportCreated, t.fanOut(
		domain.NotificationReportAvailable, "Report available",
		domain.RoleAdministrator, domain.RoleManager))
}

// fanOut builds an observer that records one notification per active user
// holding any of the given roles. The acting user is skipped.
func (t *Triggers) fanOut(typ domain.NotificationType, title string, roles ...domain.Role) domain.Observer {
	return func(ctx context.Context, event domain.Event) error {
		recipients, err := t.recipients(ctx, event.ActorID, roles)
		if err != nil {
			return err
		}
		var firstErr error
		for _, id := range recipients {
			if _, err := t.notifications.Record(ctx, id, typ, title, event.Message); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

func (t *Triggers) recipients(ctx context.Context, actorID int64, roles []domain.Role) ([]int64, error) {
	users, err := t.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0)
	for _, u := range users {
		if u.ID == actorID || u.Status != domain.StatusActive {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u.ID)
				break
			}
		}
	}
	return out, nil
}
