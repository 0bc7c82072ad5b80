package service

import (
	"context"
	"sync"
	"testing"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/repository/memory"
	"bookreview-be/pkg/events"
	pktNats "bookreview-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu         sync.Mutex
	sent       map[uuid.UUID][]model.Notification
	broadcasts []model.Notification
}

func (d *recordingDelivery) Send(userID uuid.UUID, n model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent == nil {
		d.sent = map[uuid.UUID][]model.Notification{}
	}
	d.sent[userID] = append(d.sent[userID], n)
}

func (d *recordingDelivery) Broadcast(n model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcasts = append(d.broadcasts, n)
}

func TestSelfTargetedEventIsStoredAndPushed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewNotificationRepository(store)
	require.NoError(t, repo.UpsertNotificationType(ctx, &model.NotificationType{
		Code:        "ASSIGNMENT_DEADLINE_CHANGED",
		DisplayName: "Deadline updated",
		Template:    "Your deadline for {book_title} is now {new_deadline}",
		TargetType:  TargetSelf,
		IsActive:    true,
	}))

	delivery := &recordingDelivery{}
	svc := NewNotificationService(repo, nil, delivery, logger.NewNop())

	reader := uuid.New()
	assignmentId := uuid.New()
	err := svc.handleEvent(ctx, events.New(pktNats.SubjectPrefix+"ASSIGNMENT_DEADLINE_CHANGED", map[string]interface{}{
		"user_id":      reader.String(),
		"book_title":   "Dune",
		"new_deadline": "Thu, 11 Jan 2024 00:00:00 UTC",
		"entity_type":  "assignment",
		"entity_id":    assignmentId.String(),
	}))
	require.NoError(t, err)

	list, total, err := svc.GetNotifications(ctx, reader, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Your deadline for Dune is now Thu, 11 Jan 2024 00:00:00 UTC", list[0].Message)
	assert.Equal(t, "assignment", list[0].EntityType)
	assert.Contains(t, string(list[0].Metadata), "/assignments/"+assignmentId.String())
	assert.Len(t, delivery.sent[reader], 1)

	count, _ := svc.GetUnreadCount(ctx, reader)
	assert.Equal(t, int64(1), count)

	assert.Error(t, svc.MarkAsRead(ctx, uuid.New(), list[0].ID))
	require.NoError(t, svc.MarkAsRead(ctx, reader, list[0].ID))
	count, _ = svc.GetUnreadCount(ctx, reader)
	assert.Equal(t, int64(0), count)
}

func TestAdminTargetedEventFansOutToActiveAdmins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	uow := factory.NewUnitOfWork(ctx)

	active := &entity.User{Email: "a@example.com", FullName: "A", Role: entity.UserRoleAdmin}
	suspended := &entity.User{Email: "s@example.com", FullName: "S", Role: entity.UserRoleAdmin, Status: entity.UserStatusSuspended}
	require.NoError(t, uow.UserRepository().Create(ctx, active))
	require.NoError(t, uow.UserRepository().Create(ctx, suspended))

	repo := memory.NewNotificationRepository(store)
	require.NoError(t, repo.UpsertNotificationType(ctx, &model.NotificationType{
		Code: "REFUND_REQUESTED", DisplayName: "Refund requested", Template: "{credits} credits", TargetType: TargetAdmin, IsActive: true,
	}))

	delivery := &recordingDelivery{}
	svc := NewNotificationService(repo, nil, delivery, logger.NewNop())
	require.NoError(t, svc.handleEvent(ctx, events.New("REFUND_REQUESTED", map[string]interface{}{"credits": 50})))

	assert.Len(t, delivery.sent, 1)
	assert.Len(t, delivery.sent[active.Id], 1)
	assert.Equal(t, "50 credits", delivery.sent[active.Id][0].Message)
}

func TestUnknownOrInactiveTypeIsIgnored(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository(memory.NewStore())
	require.NoError(t, repo.UpsertNotificationType(ctx, &model.NotificationType{
		Code: "REFUND_REJECTED", DisplayName: "x", Template: "x", TargetType: TargetSelf, IsActive: false,
	}))

	delivery := &recordingDelivery{}
	svc := NewNotificationService(repo, nil, delivery, logger.NewNop())

	assert.NoError(t, svc.handleEvent(ctx, events.New("REFUND_REJECTED", map[string]interface{}{"user_id": uuid.NewString()})))
	assert.NoError(t, svc.handleEvent(ctx, events.New("SOMETHING_ELSE", nil)))
	assert.Empty(t, delivery.sent)
}

func TestBroadcastIsPushOnly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository(memory.NewStore())
	require.NoError(t, repo.UpsertNotificationType(ctx, &model.NotificationType{
		Code: "MAINTENANCE", DisplayName: "Maintenance", Template: "Down at {at}", TargetType: TargetBroadcast, IsActive: true,
	}))

	delivery := &recordingDelivery{}
	svc := NewNotificationService(repo, nil, delivery, logger.NewNop())
	require.NoError(t, svc.handleEvent(ctx, events.New("MAINTENANCE", map[string]interface{}{"at": "22:00"})))

	require.Len(t, delivery.broadcasts, 1)
	assert.Equal(t, "Down at 22:00", delivery.broadcasts[0].Message)
	assert.Equal(t, uuid.Nil, delivery.broadcasts[0].UserID)
}
