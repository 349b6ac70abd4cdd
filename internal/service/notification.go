package service

import (
	"context"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// NotificationService manages the notification log. Rows are written only
// as a side effect of another aggregate's mutation, through Record; user
// facing callers can read their own inbox and flip the read flag, nothing
// else.
type NotificationService struct {
	repo repository.Repository[*domain.Notification]
	now  clock
}

// NewNotificationService wires the notification service.
func NewNotificationService(repo repository.Repository[*domain.Notification]) *NotificationService {
	return &NotificationService{repo: repo, now: systemClock}
}

// Record persists a notification in its own transaction. Called by the
// registered observers, never from a user-facing operation.
func (s *NotificationService) Record(ctx context.Context, recipientID int64, typ domain.NotificationType, title, message string) (*domain.Notification, error) {
	n, ok := domain.NewNotification(recipientID, typ, title, message, s.now())
	if !ok {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid notification")
	}
	err := repository.WithTx[*domain.Notification](ctx, s.repo, func(tx repository.Tx[*domain.Notification]) error {
		var err error
		n, err = tx.Insert(ctx, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListFor returns the actor's own notifications, newest first.
func (s *NotificationService) ListFor(ctx context.Context, actor policy.Actor) ([]domain.NotificationDTO, error) {
	if err := policy.Check(actor, policy.OpNotificationRead); err != nil {
		return nil, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationDTO, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].RecipientID == actor.UserID {
			out = append(out, domain.NewNotificationDTO(all[i]))
		}
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for the actor.
func (s *NotificationService) UnreadCount(ctx context.Context, actor policy.Actor) (int, error) {
	if err := policy.Check(actor, policy.OpNotificationRead); err != nil {
		return 0, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range all {
		if n.RecipientID == actor.UserID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flips the read flag of one of the actor's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, actor policy.Actor, id int64) (*domain.NotificationDTO, error) {
	if err := policy.Check(actor, policy.OpNotificationRead); err != nil {
		return nil, err
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != actor.UserID {
		return nil, apperrors.ErrPermissionDenied("notification:read")
	}
	if !n.Read {
		n.Read = true
		err = repository.WithTx[*domain.Notification](ctx, s.repo, func(tx repository.Tx[*domain.Notification]) error {
			n, err = tx.Update(ctx, n)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	dto := domain.NewNotificationDTO(n)
	return &dto, nil
}
