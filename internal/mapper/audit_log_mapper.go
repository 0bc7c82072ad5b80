package mapper

import (
	"encoding/json"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"

	"gorm.io/datatypes"
)

type AuditLogMapper struct{}

func NewAuditLogMapper() *AuditLogMapper {
	return &AuditLogMapper{}
}

func (m *AuditLogMapper) ToEntity(l *model.AuditLog) *entity.AuditLog {
	details := map[string]interface{}{}
	if len(l.Details) > 0 {
		_ = json.Unmarshal(l.Details, &details)
	}
	return &entity.AuditLog{
		Id:         l.Id,
		ActorId:    l.ActorId,
		Action:     l.Action,
		Severity:   entity.AuditSeverity(l.Severity),
		EntityType: l.EntityType,
		EntityId:   l.EntityId,
		Details:    details,
		CreatedAt:  l.CreatedAt,
	}
}

func (m *AuditLogMapper) ToModel(l *entity.AuditLog) (*model.AuditLog, error) {
	raw, err := json.Marshal(l.Details)
	if err != nil {
		return nil, err
	}
	return &model.AuditLog{
		Id:         l.Id,
		ActorId:    l.ActorId,
		Action:     l.Action,
		Severity:   string(l.Severity),
		EntityType: l.EntityType,
		EntityId:   l.EntityId,
		Details:    datatypes.JSON(raw),
		CreatedAt:  l.CreatedAt,
	}, nil
}
