package service

import (
	"context"

	"bookreview-be/internal/dto"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/pkg/admin/mapper"
)

type IAuditLogService interface {
	GetAuditLogs(ctx context.Context, entityType, action string, page, limit int) (*dto.PaginatedResponse[*dto.AuditLogResponse], error)
}

type auditLogService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAuditLogService(uowFactory unitofwork.RepositoryFactory) IAuditLogService {
	return &auditLogService{uowFactory: uowFactory}
}

func (s *auditLogService) GetAuditLogs(ctx context.Context, entityType, action string, page, limit int) (*dto.PaginatedResponse[*dto.AuditLogResponse], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, total, err := uow.AuditLogRepository().FindAll(ctx, contract.AuditLogFilter{
		EntityType: entityType,
		Action:     action,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedResponse[*dto.AuditLogResponse]{
		Items: mapper.AuditLogsToResponse(logs),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
