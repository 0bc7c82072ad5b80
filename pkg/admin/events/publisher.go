package events

import (
	"context"
	"time"

	"bookreview-be/internal/pkg/logger"
	pkgEvents "bookreview-be/pkg/events"
	pktNats "bookreview-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event codes. Each one has a matching notification type seeded by cmd/seed.
const (
	AssignmentDeadlineChanged = "ASSIGNMENT_DEADLINE_CHANGED"
	AssignmentReassigned      = "ASSIGNMENT_REASSIGNED"
	AssignmentCancelled       = "ASSIGNMENT_CANCELLED"
	RefundRequested           = "REFUND_REQUESTED"
	RefundCompleted           = "REFUND_COMPLETED"
	RefundRejected            = "REFUND_REJECTED"
)

// Publisher abstracts event publishing for admin operations
type Publisher interface {
	PublishDeadlineChanged(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle string, newDeadline time.Time, hours int)
	PublishReaderReassigned(ctx context.Context, actorId, oldAssignmentId, newAssignmentId, readerUserId uuid.UUID, oldBookTitle, newBookTitle string)
	PublishAssignmentCancelled(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle, reason string)
	PublishRefundRequested(ctx context.Context, refundId, authorUserId uuid.UUID, amount decimal.Decimal, credits int)
	PublishRefundCompleted(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, amount decimal.Decimal)
	PublishRefundRejected(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, notes string)
}

// NatsPublisher implements Publisher using NATS. A nil NATS publisher turns every call into a no-op.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, pkgEvents.New(eventType, data)); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishDeadlineChanged(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle string, newDeadline time.Time, hours int) {
	direction := "extended"
	if hours < 0 {
		direction = "shortened"
	}
	p.emit(ctx, AssignmentDeadlineChanged, map[string]interface{}{
		"user_id":      readerUserId.String(),
		"actor_id":     actorId.String(),
		"book_title":   bookTitle,
		"new_deadline": newDeadline.UTC().Format(time.RFC1123),
		"hours":        hours,
		"direction":    direction,
		"entity_type":  "assignment",
		"entity_id":    assignmentId.String(),
	})
}

func (p *NatsPublisher) PublishReaderReassigned(ctx context.Context, actorId, oldAssignmentId, newAssignmentId, readerUserId uuid.UUID, oldBookTitle, newBookTitle string) {
	p.emit(ctx, AssignmentReassigned, map[string]interface{}{
		"user_id":           readerUserId.String(),
		"actor_id":          actorId.String(),
		"old_assignment_id": oldAssignmentId.String(),
		"old_book_title":    oldBookTitle,
		"new_book_title":    newBookTitle,
		"entity_type":       "assignment",
		"entity_id":         newAssignmentId.String(),
	})
}

func (p *NatsPublisher) PublishAssignmentCancelled(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle, reason string) {
	p.emit(ctx, AssignmentCancelled, map[string]interface{}{
		"user_id":     readerUserId.String(),
		"actor_id":    actorId.String(),
		"book_title":  bookTitle,
		"reason":      reason,
		"entity_type": "assignment",
		"entity_id":   assignmentId.String(),
	})
}

// PublishRefundRequested targets every admin; the author is recorded as the actor.
func (p *NatsPublisher) PublishRefundRequested(ctx context.Context, refundId, authorUserId uuid.UUID, amount decimal.Decimal, credits int) {
	p.emit(ctx, RefundRequested, map[string]interface{}{
		"actor_id":    authorUserId.String(),
		"amount":      amount.StringFixed(2),
		"credits":     credits,
		"entity_type": "refund",
		"entity_id":   refundId.String(),
	})
}

func (p *NatsPublisher) PublishRefundCompleted(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, amount decimal.Decimal) {
	p.emit(ctx, RefundCompleted, map[string]interface{}{
		"user_id":     authorUserId.String(),
		"actor_id":    actorId.String(),
		"amount":      amount.StringFixed(2),
		"entity_type": "refund",
		"entity_id":   refundId.String(),
	})
}

func (p *NatsPublisher) PublishRefundRejected(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, notes string) {
	p.emit(ctx, RefundRejected, map[string]interface{}{
		"user_id":     authorUserId.String(),
		"actor_id":    actorId.String(),
		"reason":      notes,
		"entity_type": "refund",
		"entity_id":   refundId.String(),
	})
}
