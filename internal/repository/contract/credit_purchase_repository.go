package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

type CreditPurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.CreditPurchase) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.CreditPurchase, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
}
