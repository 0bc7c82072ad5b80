package memory

import (
	"context"
	"sort"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type refundRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.RefundRequest) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if refund.Id == uuid.Nil {
		refund.Id = uuid.New()
	}
	now := time.Now()
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = now
	}
	refund.UpdatedAt = now

	row := *refund
	row.CreditPurchase, row.AuthorProfile = nil, nil
	r.store.data.refunds[row.Id] = row
	return nil
}

func (r *refundRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.refunds[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.refundDetails(row), nil
}

func (r *refundRepository) FindOpenByPurchase(ctx context.Context, creditPurchaseId uuid.UUID) (*entity.RefundRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *entity.RefundRequest
	for _, row := range r.store.data.refunds {
		if row.CreditPurchaseId != creditPurchaseId || !row.Status.IsOpen() {
			continue
		}
		if found == nil || row.CreatedAt.After(found.CreatedAt) {
			candidate := row
			found = &candidate
		}
	}
	return found, nil
}

func (r *refundRepository) FindAll(ctx context.Context, filter contract.RefundRequestFilter) ([]*entity.RefundRequest, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*entity.RefundRequest
	for _, row := range r.store.data.refunds {
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.AuthorProfileId != nil && row.AuthorProfileId != *filter.AuthorProfileId {
			continue
		}
		matched = append(matched, r.store.data.refundDetails(row))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Id.String() < matched[j].Id.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *refundRepository) Update(ctx context.Context, refund *entity.RefundRequest) error {
	defer r.store.lockWrite(r.uow.inTx())()

	current, ok := r.store.data.refunds[refund.Id]
	if !ok {
		return contract.ErrRecordMissing
	}
	r.store.data.refunds[refund.Id] = applyRefund(current, refund)
	return nil
}

func (r *refundRepository) UpdateIfStatus(ctx context.Context, refund *entity.RefundRequest, expected entity.RefundStatus) error {
	defer r.store.lockWrite(r.uow.inTx())()

	current, ok := r.store.data.refunds[refund.Id]
	if !ok {
		return contract.ErrRecordMissing
	}
	if current.Status != expected {
		return contract.ErrStatusChanged
	}
	r.store.data.refunds[refund.Id] = applyRefund(current, refund)
	return nil
}

func (r *refundRepository) SumCompleted(ctx context.Context, creditPurchaseId uuid.UUID) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := decimal.Zero
	for _, row := range r.store.data.refunds {
		if row.CreditPurchaseId != creditPurchaseId || row.Status != entity.RefundStatusCompleted || row.RefundAmount == nil {
			continue
		}
		total = total.Add(*row.RefundAmount)
	}
	return total, nil
}

func applyRefund(current entity.RefundRequest, refund *entity.RefundRequest) entity.RefundRequest {
	current.Status = refund.Status
	current.AdminNotes = refund.AdminNotes
	current.RefundAmount = refund.RefundAmount
	current.ReviewedBy = refund.ReviewedBy
	current.ReviewedAt = refund.ReviewedAt
	current.StripeRefundId = refund.StripeRefundId
	current.ProcessedAt = refund.ProcessedAt
	current.UpdatedAt = time.Now()
	return current
}

func (r *refundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.store.lockWrite(r.uow.inTx())()

	delete(r.store.data.refunds, id)
	return nil
}

func (t *tables) refundDetails(row entity.RefundRequest) *entity.RefundRequest {
	out := row
	if purchase, ok := t.purchases[row.CreditPurchaseId]; ok {
		out.CreditPurchase = &purchase
	}
	if author, ok := t.authors[row.AuthorProfileId]; ok {
		out.AuthorProfile = t.authorDetails(author)
	}
	return &out
}

// paginate slices a 1-based page. A non-positive limit returns everything.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
