package memory

import (
	"context"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
)

type creditPurchaseRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *creditPurchaseRepository) Create(ctx context.Context, purchase *entity.CreditPurchase) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if purchase.Id == uuid.Nil {
		purchase.Id = uuid.New()
	}
	now := time.Now()
	if purchase.PurchaseDate.IsZero() {
		purchase.PurchaseDate = now
	}
	purchase.CreatedAt, purchase.UpdatedAt = now, now

	r.store.data.purchases[purchase.Id] = *purchase
	return nil
}

func (r *creditPurchaseRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.CreditPurchase, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.purchases[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *creditPurchaseRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	defer r.store.lockWrite(r.uow.inTx())()

	row, ok := r.store.data.purchases[id]
	if !ok {
		return contract.ErrRecordMissing
	}
	row.PaymentStatus = status
	row.UpdatedAt = time.Now()
	r.store.data.purchases[id] = row
	return nil
}
