package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/repository"
	"bookreview-be/pkg/events"
	pktNats "bookreview-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TargetSelf      = "SELF"
	TargetAdmin     = "ADMIN"
	TargetRole      = "ROLE"
	TargetBroadcast = "BROADCAST"
)

// NotificationDelivery pushes real-time updates. Implemented by the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start subscribes the worker to every workflow event with a durable consumer.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No NATS subscriber, in-app notifications are disabled", nil)
		return
	}
	if err := s.subscriber.Subscribe(pktNats.SubjectPrefix+">", "notif-service-worker", s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"subject": pktNats.SubjectPrefix + ">"})
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), pktNats.SubjectPrefix)

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		return err
	}
	if config == nil {
		s.logger.Debug("NotificationService", fmt.Sprintf("No active notification type for '%s'", typeCode), nil)
		return nil
	}

	if config.TargetType == TargetBroadcast {
		// Push only; broadcasts are not stored per user
		if s.delivery != nil {
			s.delivery.Broadcast(s.buildNotification(uuid.Nil, config, event))
		}
		return nil
	}

	recipients, err := s.resolveRecipients(ctx, config, event)
	if err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error resolving recipients for %s", typeCode), map[string]interface{}{"error": err.Error()})
		return err
	}

	for _, userID := range recipients {
		notif := s.buildNotification(userID, config, event)
		if err := s.repo.CreateNotification(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
				"userId": userID.String(),
				"error":  err.Error(),
			})
			continue
		}
		if s.delivery != nil {
			s.delivery.Send(userID, notif)
		}
	}

	s.logger.Info("NotificationService", "Delivered notifications", map[string]interface{}{
		"type":       typeCode,
		"recipients": len(recipients),
	})
	return nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, config *model.NotificationType, event events.Event) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID

	switch config.TargetType {
	case TargetSelf:
		uidStr, _ := event.Payload()["user_id"].(string)
		uid, err := uuid.Parse(uidStr)
		if err != nil {
			s.logger.Warn("NotificationService", fmt.Sprintf("Target SELF but no user_id in payload for %s", event.EventType()), nil)
			return nil, nil
		}
		userIDs = append(userIDs, uid)

	case TargetAdmin, TargetRole:
		role := config.TargetRole
		if config.TargetType == TargetAdmin {
			role = string(entity.UserRoleAdmin)
		}
		users, err := s.repo.GetActiveUsersByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			userIDs = append(userIDs, u.Id)
		}
	}

	return userIDs, nil
}

// buildNotification fills {placeholders} in the template from the event payload.
func (s *NotificationService) buildNotification(userID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	msg := config.Template
	payload := event.Payload()
	for k, v := range payload {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%s}", k), fmt.Sprintf("%v", v))
	}

	var actorID *uuid.UUID
	if actorStr, ok := payload["actor_id"].(string); ok {
		if aid, err := uuid.Parse(actorStr); err == nil {
			actorID = &aid
		}
	}

	entityType, _ := payload["entity_type"].(string)
	var entityID *uuid.UUID
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	metaMap := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		metaMap[k] = v
	}
	if entityType != "" && entityID != nil {
		metaMap["action_url"] = fmt.Sprintf("/%ss/%s", entityType, entityID.String())
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actorID,
		TypeCode:   config.Code,
		Title:      config.DisplayName,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead only touches notifications owned by userID.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
