package memory

import (
	"context"
	"sort"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) repository.NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notification *model.Notification) error {
	defer r.store.lockWrite(false)()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.store.data.notifications = append(r.store.data.notifications, *notification)
	return nil
}

func (r *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var mine []model.Notification
	for _, n := range r.store.data.notifications {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	if offset >= len(mine) {
		return []model.Notification{}, total, nil
	}
	end := len(mine)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return mine[offset:end], total, nil
}

func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, n := range r.store.data.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	defer r.store.lockWrite(false)()

	for i := range r.store.data.notifications {
		n := &r.store.data.notifications[i]
		if n.ID == notificationID && n.UserID == userID {
			now := time.Now()
			n.IsRead, n.ReadAt = true, &now
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	defer r.store.lockWrite(false)()

	now := time.Now()
	for i := range r.store.data.notifications {
		n := &r.store.data.notifications[i]
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &now
		}
	}
	return nil
}

func (r *NotificationRepository) GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.data.notifTypes[code]
	if !ok || !t.IsActive {
		return nil, nil
	}
	return &t, nil
}

func (r *NotificationRepository) UpsertNotificationType(ctx context.Context, notifType *model.NotificationType) error {
	defer r.store.lockWrite(false)()

	r.store.data.notifTypes[notifType.Code] = *notifType
	return nil
}

func (r *NotificationRepository) GetActiveUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var users []model.User
	for _, u := range r.store.data.users {
		if string(u.Role) == role && u.Status == entity.UserStatusActive {
			users = append(users, model.User{Id: u.Id, Email: u.Email, FullName: u.FullName, Role: string(u.Role), Status: string(u.Status)})
		}
	}
	return users, nil
}
