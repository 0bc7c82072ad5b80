package mapper

import (
	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"

	"github.com/google/uuid"
)

type RefundMapper struct {
	profiles *ProfileMapper
}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{profiles: NewProfileMapper()}
}

func (m *RefundMapper) PurchaseToEntity(p *model.CreditPurchase) *entity.CreditPurchase {
	if p == nil || p.Id == uuid.Nil {
		return nil
	}
	return &entity.CreditPurchase{
		Id:              p.Id,
		AuthorProfileId: p.AuthorProfileId,
		Credits:         p.Credits,
		AmountPaid:      p.AmountPaid,
		Currency:        p.Currency,
		PaymentStatus:   entity.PaymentStatus(p.PaymentStatus),
		StripePaymentId: p.StripePaymentId,
		PurchaseDate:    p.PurchaseDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *RefundMapper) PurchaseToModel(p *entity.CreditPurchase) *model.CreditPurchase {
	return &model.CreditPurchase{
		Id:              p.Id,
		AuthorProfileId: p.AuthorProfileId,
		Credits:         p.Credits,
		AmountPaid:      p.AmountPaid,
		Currency:        p.Currency,
		PaymentStatus:   string(p.PaymentStatus),
		StripePaymentId: p.StripePaymentId,
		PurchaseDate:    p.PurchaseDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *RefundMapper) ToEntity(r *model.RefundRequest) *entity.RefundRequest {
	if r == nil {
		return nil
	}
	return &entity.RefundRequest{
		Id:               r.Id,
		CreditPurchaseId: r.CreditPurchaseId,
		AuthorProfileId:  r.AuthorProfileId,
		Reason:           entity.RefundReason(r.Reason),
		Explanation:      r.Explanation,
		Status:           entity.RefundStatus(r.Status),
		AdminNotes:       r.AdminNotes,
		RefundAmount:     r.RefundAmount,
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       r.ReviewedAt,
		StripeRefundId:   r.StripeRefundId,
		ProcessedAt:      r.ProcessedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		CreditPurchase:   m.PurchaseToEntity(&r.CreditPurchase),
		AuthorProfile:    m.profiles.AuthorToEntity(&r.AuthorProfile),
	}
}

func (m *RefundMapper) ToModel(r *entity.RefundRequest) *model.RefundRequest {
	return &model.RefundRequest{
		Id:               r.Id,
		CreditPurchaseId: r.CreditPurchaseId,
		AuthorProfileId:  r.AuthorProfileId,
		Reason:           string(r.Reason),
		Explanation:      r.Explanation,
		Status:           string(r.Status),
		AdminNotes:       r.AdminNotes,
		RefundAmount:     r.RefundAmount,
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       r.ReviewedAt,
		StripeRefundId:   r.StripeRefundId,
		ProcessedAt:      r.ProcessedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
