package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository/memory"
	"plantkeeper.io/plantkeeper/internal/service"
)

func init() {
	_ = logger.Init("error", "json")
}

type inboxFixture struct {
	users         *memory.Store[*domain.User]
	notifications *memory.Store[*domain.Notification]
	dispatcher    *domain.Dispatcher
	svc           *service.NotificationService
}

func newInboxFixture(t *testing.T) *inboxFixture {
	t.Helper()
	f := &inboxFixture{
		users:         memory.NewStore[*domain.User]("user", memory.ShallowClone[domain.User]()),
		notifications: memory.NewStore[*domain.Notification]("notification", memory.ShallowClone[domain.Notification]()),
		dispatcher:    domain.NewDispatcher(),
	}
	f.svc = service.NewNotificationService(f.notifications)
	NewTriggers(f.svc, f.users).Register(f.dispatcher)
	return f
}

func (f *inboxFixture) seedUser(t *testing.T, username string, role domain.Role, status domain.Status) *domain.User {
	t.Helper()
	ctx := context.Background()
	u, err := domain.NewUserBuilder().
		Username(username).
		FirstName("Test").
		LastName("User").
		Street("Kerkstraat").
		Number(3).
		PostalCode(9000).
		City("Gent").
		Role(role).
		Status(status).
		Build()
	require.NoError(t, err)
	tx, err := f.users.Begin(ctx)
	require.NoError(t, err)
	u, err = tx.Insert(ctx, u)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return u
}

func TestTriggers_SiteEventReachesAdminsAndManagers(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t)
	admin := f.seedUser(t, "admin", domain.RoleAdministrator, domain.StatusActive)
	manager := f.seedUser(t, "manager", domain.RoleManager, domain.StatusActive)
	f.seedUser(t, "tech", domain.RoleTechnician, domain.StatusActive)
	f.seedUser(t, "gone", domain.RoleManager, domain.StatusInactive)

	err := f.dispatcher.Notify(ctx, domain.Event{
		Type:        domain.EventSiteCreated,
		Aggregate:   "site",
		AggregateID: 1,
		ActorID:     admin.ID,
		Message:     "site Plant North was created",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)

	// Only the manager: the actor is skipped, the technician's role does
	// not match, the inactive manager is excluded.
	require.Equal(t, 1, f.notifications.Len())
	inbox, err := f.svc.ListFor(ctx, policy.Actor{UserID: manager.ID, Role: domain.RoleManager})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, domain.NotificationSiteChange, inbox[0].Type)
	require.Equal(t, "site Plant North was created", inbox[0].Message)
	require.False(t, inbox[0].Read)
}

func TestTriggers_MaintenanceCompletedFansOutPerRecipient(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t)
	f.seedUser(t, "admin", domain.RoleAdministrator, domain.StatusActive)
	f.seedUser(t, "manager", domain.RoleManager, domain.StatusActive)
	f.seedUser(t, "resp", domain.RoleResponsible, domain.StatusActive)

	err := f.dispatcher.Notify(ctx, domain.Event{
		Type:        domain.EventMaintenanceCompleted,
		Aggregate:   "maintenance",
		AggregateID: 7,
		ActorID:     0,
		Message:     "maintenance 7 on machine 3 completed",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.notifications.Len())
}

func TestTriggers_FailingInboxWriteDoesNotPoisonDispatch(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t)
	f.seedUser(t, "admin", domain.RoleAdministrator, domain.StatusActive)

	f.notifications.FailNext("insert", context.DeadlineExceeded)

	// The dispatcher surfaces the failure but delivery stays best-effort;
	// nothing else in the system is rolled back.
	err := f.dispatcher.Notify(ctx, domain.Event{
		Type:        domain.EventUserCreated,
		Aggregate:   "user",
		AggregateID: 2,
		Message:     "user bram was created",
		OccurredAt:  time.Now(),
	})
	require.Error(t, err)
	require.Equal(t, 0, f.notifications.Len())
}

func TestInbox_MarkReadAndUnreadCount(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t)
	manager := f.seedUser(t, "manager", domain.RoleManager, domain.StatusActive)
	other := f.seedUser(t, "other", domain.RoleManager, domain.StatusActive)
	actor := policy.Actor{UserID: manager.ID, Role: domain.RoleManager}

	n, err := f.svc.Record(ctx, manager.ID, domain.NotificationReportAvailable, "Report available", "report 1")
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, other.ID, domain.NotificationReportAvailable, "Report available", "report 1")
	require.NoError(t, err)

	count, err := f.svc.UnreadCount(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	dto, err := f.svc.MarkRead(ctx, actor, n.ID)
	require.NoError(t, err)
	require.True(t, dto.Read)

	count, err = f.svc.UnreadCount(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// A recipient cannot read someone else's notification.
	inbox, err := f.svc.ListFor(ctx, actor)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
}
