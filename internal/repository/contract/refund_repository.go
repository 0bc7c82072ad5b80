package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundRequestFilter struct {
	Status          *entity.RefundStatus
	AuthorProfileId *uuid.UUID
	Page            int
	Limit           int
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error)
	// FindOpenByPurchase returns the PENDING, APPROVED or PROCESSING request for the purchase, if any.
	FindOpenByPurchase(ctx context.Context, creditPurchaseId uuid.UUID) (*entity.RefundRequest, error)
	// FindAll returns newest first with the purchase and author joined, plus the unpaginated total.
	FindAll(ctx context.Context, filter RefundRequestFilter) ([]*entity.RefundRequest, int64, error)
	Update(ctx context.Context, refund *entity.RefundRequest) error
	// UpdateIfStatus writes like Update but only while the stored status is still expected.
	// Returns ErrStatusChanged when another writer moved the request first.
	UpdateIfStatus(ctx context.Context, refund *entity.RefundRequest, expected entity.RefundStatus) error
	// SumCompleted is the total already paid back on the purchase by COMPLETED requests.
	SumCompleted(ctx context.Context, creditPurchaseId uuid.UUID) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
