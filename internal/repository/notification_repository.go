package repository

import (
	"context"
	"errors"

	"bookreview-be/internal/model"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	// Notification Operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	// Registry Operations
	GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error)
	UpsertNotificationType(ctx context.Context, notifType *model.NotificationType) error
	GetActiveUsersByRole(ctx context.Context, role string) ([]model.User, error)
}

// ErrNotificationNotFound is returned when a notification does not exist for the user.
var ErrNotificationNotFound = errors.New("notification not found")
