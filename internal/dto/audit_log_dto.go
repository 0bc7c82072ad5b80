package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	Id         uuid.UUID              `json:"id"`
	ActorId    *uuid.UUID             `json:"actorId,omitempty"`
	Action     string                 `json:"action"`
	Severity   string                 `json:"severity"`
	EntityType string                 `json:"entityType"`
	EntityId   string                 `json:"entityId"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}
