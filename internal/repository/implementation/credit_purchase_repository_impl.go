package implementation

import (
	"context"
	"errors"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/mapper"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditPurchaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewCreditPurchaseRepository(db *gorm.DB) contract.CreditPurchaseRepository {
	return &CreditPurchaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewRefundMapper(),
	}
}

func (r *CreditPurchaseRepositoryImpl) Create(ctx context.Context, purchase *entity.CreditPurchase) error {
	m := r.mapper.PurchaseToModel(purchase)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*purchase = *r.mapper.PurchaseToEntity(m)
	return nil
}

func (r *CreditPurchaseRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.CreditPurchase, error) {
	var m model.CreditPurchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PurchaseToEntity(&m), nil
}

func (r *CreditPurchaseRepositoryImpl) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.CreditPurchase{}).
		Where("id = ?", id).
		Update("payment_status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordMissing
	}
	return nil
}
