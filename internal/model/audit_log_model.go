package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActorId    *uuid.UUID     `gorm:"type:uuid;index"`
	Action     string         `gorm:"type:varchar(60);not null;index"`
	Severity   string         `gorm:"type:varchar(20);not null;default:'INFO';index"`
	EntityType string         `gorm:"type:varchar(50);index:idx_audit_logs_entity,priority:1"`
	EntityId   string         `gorm:"type:varchar(64);index:idx_audit_logs_entity,priority:2"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"default:now();not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
