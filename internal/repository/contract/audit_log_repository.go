package contract

import (
	"context"

	"bookreview-be/internal/entity"
)

type AuditLogFilter struct {
	EntityType string
	Action     string
	Page       int
	Limit      int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, filter AuditLogFilter) ([]*entity.AuditLog, int64, error)
}
