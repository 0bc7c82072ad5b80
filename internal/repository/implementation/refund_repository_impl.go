package implementation

import (
	"context"
	"errors"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/mapper"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/scope"
	"bookreview-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &refundRepositoryImpl{
		db:     db,
		mapper: mapper.NewRefundMapper(),
	}
}

func (r *refundRepositoryImpl) apply(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *refundRepositoryImpl) Create(ctx context.Context, refund *entity.RefundRequest) error {
	m := r.mapper.ToModel(refund)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	refund.Id = m.Id
	refund.CreatedAt = m.CreatedAt
	refund.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *refundRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRequest, error) {
	var m model.RefundRequest
	if err := r.apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *refundRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	return r.findOne(ctx, specification.WithRefundDetails{}, specification.ByID{ID: id})
}

func (r *refundRepositoryImpl) FindOpenByPurchase(ctx context.Context, creditPurchaseId uuid.UUID) (*entity.RefundRequest, error) {
	specs := append(specification.OpenRefundFor(creditPurchaseId), specification.OrderBy{Field: "created_at", Desc: true})
	return r.findOne(ctx, specs...)
}

func (r *refundRepositoryImpl) FindAll(ctx context.Context, filter contract.RefundRequestFilter) ([]*entity.RefundRequest, int64, error) {
	var specs []specification.Specification
	if filter.Status != nil {
		specs = append(specs, specification.Filter("status", string(*filter.Status)))
	}
	if filter.AuthorProfileId != nil {
		specs = append(specs, specification.Filter("author_profile_id", *filter.AuthorProfileId))
	}

	var total int64
	if err := r.apply(r.db.WithContext(ctx).Model(&model.RefundRequest{}), specs...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.apply(r.db.WithContext(ctx), append(specs, specification.WithRefundDetails{})...).Scopes(scope.OrderByCreatedDesc)
	if filter.Limit > 0 {
		query = specification.Page(filter.Page, filter.Limit).Apply(query)
	}

	var rows []*model.RefundRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	refunds := make([]*entity.RefundRequest, 0, len(rows))
	for _, row := range rows {
		refunds = append(refunds, r.mapper.ToEntity(row))
	}
	return refunds, total, nil
}

func refundColumns(refund *entity.RefundRequest) map[string]interface{} {
	return map[string]interface{}{
		"status":           string(refund.Status),
		"admin_notes":      refund.AdminNotes,
		"refund_amount":    refund.RefundAmount,
		"reviewed_by":      refund.ReviewedBy,
		"reviewed_at":      refund.ReviewedAt,
		"stripe_refund_id": refund.StripeRefundId,
		"processed_at":     refund.ProcessedAt,
	}
}

func (r *refundRepositoryImpl) Update(ctx context.Context, refund *entity.RefundRequest) error {
	result := r.db.WithContext(ctx).Model(&model.RefundRequest{}).
		Where("id = ?", refund.Id).
		Updates(refundColumns(refund))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordMissing
	}
	return nil
}

// UpdateIfStatus relies on the row lock taken by UPDATE: of two racing writers only one still matches the status.
func (r *refundRepositoryImpl) UpdateIfStatus(ctx context.Context, refund *entity.RefundRequest, expected entity.RefundStatus) error {
	result := r.db.WithContext(ctx).Model(&model.RefundRequest{}).
		Where("id = ? AND status = ?", refund.Id, string(expected)).
		Updates(refundColumns(refund))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.RefundRequest{}).Where("id = ?", refund.Id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return contract.ErrRecordMissing
	}
	return contract.ErrStatusChanged
}

func (r *refundRepositoryImpl) SumCompleted(ctx context.Context, creditPurchaseId uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.RefundRequest{}).
		Select("SUM(refund_amount)").
		Where("credit_purchase_id = ? AND status = ?", creditPurchaseId, string(entity.RefundStatusCompleted)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *refundRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RefundRequest{}).Error
}
