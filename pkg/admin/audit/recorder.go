package audit

import (
	"context"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Entry describes one administrative action to append to the audit trail.
type Entry struct {
	ActorId    uuid.UUID
	Action     string
	Severity   entity.AuditSeverity
	EntityType string
	EntityId   string
	Details    map[string]interface{}
}

// Record appends the entry through the unit of work so it commits with the change it describes.
func Record(ctx context.Context, uow unitofwork.UnitOfWork, e Entry) error {
	severity := e.Severity
	if severity == "" {
		severity = entity.AuditSeverityInfo
	}

	var actor *uuid.UUID
	if e.ActorId != uuid.Nil {
		id := e.ActorId
		actor = &id
	}

	return uow.AuditLogRepository().Create(ctx, &entity.AuditLog{
		ActorId:    actor,
		Action:     e.Action,
		Severity:   severity,
		EntityType: e.EntityType,
		EntityId:   e.EntityId,
		Details:    e.Details,
	})
}
