package implementation

import (
	"context"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/mapper"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/scope"
	"bookreview-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AuditLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditLogMapper
}

func NewAuditLogRepository(db *gorm.DB) contract.AuditLogRepository {
	return &AuditLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditLogMapper(),
	}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	m, err := r.mapper.ToModel(log)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.Id = m.Id
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditLogRepositoryImpl) FindAll(ctx context.Context, filter contract.AuditLogFilter) ([]*entity.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.EntityType != "" {
		query = specification.Filter("entity_type", filter.EntityType).Apply(query)
	}
	if filter.Action != "" {
		query = specification.Filter("action", filter.Action).Apply(query)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*model.AuditLog
	err := specification.Page(filter.Page, filter.Limit).
		Apply(query.Scopes(scope.OrderByCreatedDesc)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]*entity.AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, r.mapper.ToEntity(row))
	}
	return logs, total, nil
}
