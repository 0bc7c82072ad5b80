package memory

import (
	"context"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
)

type auditLogRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.store.data.auditLogs = append(r.store.data.auditLogs, *log)
	return nil
}

// FindAll returns newest first. Logs are append-only so reverse insertion order is creation order.
func (r *auditLogRepository) FindAll(ctx context.Context, filter contract.AuditLogFilter) ([]*entity.AuditLog, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*entity.AuditLog
	for i := len(r.store.data.auditLogs) - 1; i >= 0; i-- {
		row := r.store.data.auditLogs[i]
		if filter.EntityType != "" && row.EntityType != filter.EntityType {
			continue
		}
		if filter.Action != "" && row.Action != filter.Action {
			continue
		}
		matched = append(matched, &row)
	}

	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}
