package refund

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/pkg/admin/audit"
	adminEvents "bookreview-be/pkg/admin/events"
	"bookreview-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auditEntityType = "refund_request"

type Decision string

const (
	DecisionApprove        Decision = "approve"
	DecisionApprovePartial Decision = "approve_partial"
	DecisionReject         Decision = "reject"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionApprovePartial || d == DecisionReject
}

// ProcessInput is an administrator's decision on a pending request.
type ProcessInput struct {
	RequestId    uuid.UUID
	AdminId      uuid.UUID
	Decision     Decision
	AdminNotes   string
	RefundAmount *decimal.Decimal
}

type ProcessResult struct {
	RefundId       uuid.UUID
	Status         entity.RefundStatus
	RefundAmount   *decimal.Decimal
	StripeRefundId string
	ProcessedAt    *time.Time
}

// Processor runs the approve/reject workflow and issues the refund through the payment gateway.
type Processor struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	gateway   payment.Gateway
	mailer    mailer.Sender
	now       func() time.Time
}

func NewProcessor(logger logger.ILogger, publisher adminEvents.Publisher, gateway payment.Gateway, sender mailer.Sender) *Processor {
	return &Processor{
		logger:    logger,
		publisher: publisher,
		gateway:   gateway,
		mailer:    sender,
		now:       time.Now,
	}
}

func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// ProcessRequest applies the decision. An approval is persisted before the gateway call
// and reverted to PENDING with a note when the gateway refuses. Leaving PENDING is
// conditional on the stored status, so of two concurrent decisions only one goes through.
func (p *Processor) ProcessRequest(ctx context.Context, uow unitofwork.UnitOfWork, in ProcessInput) (*ProcessResult, error) {
	if !in.Decision.IsValid() {
		return nil, apperror.BadRequest("Unknown decision %q", in.Decision)
	}

	refund, err := uow.RefundRepository().FindById(ctx, in.RequestId)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.NotFound("Refund request not found")
	}
	if refund.Status != entity.RefundStatusPending {
		return nil, apperror.BadRequest("Refund request has already been processed")
	}

	if in.Decision == DecisionReject {
		return p.reject(ctx, uow, refund, in)
	}
	return p.approve(ctx, uow, refund, in)
}

func (p *Processor) reject(ctx context.Context, uow unitofwork.UnitOfWork, refund *entity.RefundRequest, in ProcessInput) (*ProcessResult, error) {
	now := p.now()
	refund.Status = entity.RefundStatusRejected
	refund.AdminNotes = in.AdminNotes
	refund.ReviewedBy = &in.AdminId
	refund.ReviewedAt = &now
	refund.ProcessedAt = &now

	err := unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := tx.RefundRepository().UpdateIfStatus(ctx, refund, entity.RefundStatusPending); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    in.AdminId,
			Action:     entity.AuditActionRefundRejected,
			EntityType: auditEntityType,
			EntityId:   refund.Id.String(),
			Details:    map[string]interface{}{"adminNotes": in.AdminNotes},
		})
	})
	if err != nil {
		return nil, transitionError(err)
	}

	p.logger.Info("REFUND", "Rejected refund request", map[string]interface{}{
		"refundId":   refund.Id.String(),
		"adminNotes": in.AdminNotes,
	})

	p.notifyAuthor(ctx, refund, func(to, name string) mailer.Message {
		return mailer.RefundRejected(to, name, in.AdminNotes)
	})
	if userId, ok := authorUserId(refund); ok {
		p.publisher.PublishRefundRejected(ctx, in.AdminId, refund.Id, userId, in.AdminNotes)
	}

	return &ProcessResult{RefundId: refund.Id, Status: refund.Status, ProcessedAt: &now}, nil
}

func (p *Processor) approve(ctx context.Context, uow unitofwork.UnitOfWork, refund *entity.RefundRequest, in ProcessInput) (*ProcessResult, error) {
	purchase := refund.CreditPurchase
	if purchase == nil {
		return nil, apperror.NotFound("Credit purchase not found")
	}

	refunded, err := uow.RefundRepository().SumCompleted(ctx, purchase.Id)
	if err != nil {
		return nil, err
	}
	remaining := purchase.AmountPaid.Sub(refunded)
	if !remaining.IsPositive() {
		return nil, apperror.BadRequest("%s", ReasonAlreadyRefunded)
	}

	amount, status, err := approvedAmount(in, remaining)
	if err != nil {
		return nil, err
	}

	reviewedAt := p.now()
	refund.Status = status
	refund.RefundAmount = &amount
	refund.AdminNotes = in.AdminNotes
	refund.ReviewedBy = &in.AdminId
	refund.ReviewedAt = &reviewedAt
	if err := uow.RefundRepository().UpdateIfStatus(ctx, refund, entity.RefundStatusPending); err != nil {
		return nil, transitionError(err)
	}

	if purchase.StripePaymentId == nil || strings.TrimSpace(*purchase.StripePaymentId) == "" {
		p.revert(ctx, uow, refund, in.AdminId, "Refund could not be issued: the purchase has no payment reference")
		return nil, apperror.Wrap(apperror.KindBadRequest, payment.ErrMissingPaymentReference, "Purchase has no payment reference to refund against")
	}

	res, err := p.gateway.Refund(ctx, payment.RefundRequest{
		PaymentReference: *purchase.StripePaymentId,
		AmountMinor:      payment.ToMinorUnits(amount),
		Currency:         purchase.Currency,
		Reason:           string(refund.Reason),
		IdempotencyKey:   fmt.Sprintf("refund-%s-%d", refund.Id, reviewedAt.UnixNano()),
	})
	if err != nil {
		p.logger.Error("REFUND", "Payment gateway refused refund", map[string]interface{}{
			"refundId": refund.Id.String(),
			"gateway":  p.gateway.Name(),
			"error":    err.Error(),
		})
		p.revert(ctx, uow, refund, in.AdminId, fmt.Sprintf("Refund failed: %s", err.Error()))
		return nil, apperror.Wrap(apperror.KindBadRequest, err, fmt.Sprintf("Failed to process refund: %s", err.Error()))
	}

	processedAt := p.now()
	fullRefund := refunded.Add(amount).GreaterThanOrEqual(purchase.AmountPaid)
	refund.Status = entity.RefundStatusCompleted
	refund.StripeRefundId = &res.ProviderRefundId
	refund.ProcessedAt = &processedAt

	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := tx.RefundRepository().UpdateIfStatus(ctx, refund, status); err != nil {
			return err
		}
		if fullRefund {
			if err := tx.CreditPurchaseRepository().UpdatePaymentStatus(ctx, purchase.Id, entity.PaymentStatusRefunded); err != nil {
				return err
			}
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    in.AdminId,
			Action:     entity.AuditActionRefundCompleted,
			EntityType: auditEntityType,
			EntityId:   refund.Id.String(),
			Details: map[string]interface{}{
				"decision":         string(in.Decision),
				"refundAmount":     amount.StringFixed(2),
				"originalAmount":   purchase.AmountPaid.StringFixed(2),
				"alreadyRefunded":  refunded.StringFixed(2),
				"providerRefundId": res.ProviderRefundId,
				"gateway":          p.gateway.Name(),
			},
		})
	})
	if err != nil {
		// The money has left; this needs an operator.
		p.logger.Error("REFUND", "Refund issued but completion was not recorded", map[string]interface{}{
			"refundId":         refund.Id.String(),
			"providerRefundId": res.ProviderRefundId,
			"error":            err.Error(),
		})
		if errors.Is(err, contract.ErrRecordMissing) {
			return nil, apperror.Wrap(apperror.KindNotFound, err, "Credit purchase not found")
		}
		return nil, err
	}

	p.logger.Info("REFUND", "Completed refund", map[string]interface{}{
		"refundId":         refund.Id.String(),
		"amount":           amount.StringFixed(2),
		"full":             fullRefund,
		"providerRefundId": res.ProviderRefundId,
	})

	display := fmt.Sprintf("%s %s", amount.StringFixed(2), strings.ToUpper(purchase.Currency))
	p.notifyAuthor(ctx, refund, func(to, name string) mailer.Message {
		return mailer.RefundCompleted(to, name, display)
	})
	if userId, ok := authorUserId(refund); ok {
		p.publisher.PublishRefundCompleted(ctx, in.AdminId, refund.Id, userId, amount)
	}

	return &ProcessResult{
		RefundId:       refund.Id,
		Status:         refund.Status,
		RefundAmount:   &amount,
		StripeRefundId: res.ProviderRefundId,
		ProcessedAt:    &processedAt,
	}, nil
}

// approvedAmount is everything still refundable for approve, and the requested amount capped at that for approve_partial.
func approvedAmount(in ProcessInput, remaining decimal.Decimal) (decimal.Decimal, entity.RefundStatus, error) {
	if in.Decision == DecisionApprove {
		return remaining, entity.RefundStatusApproved, nil
	}
	if in.RefundAmount == nil || !in.RefundAmount.IsPositive() {
		return decimal.Zero, "", apperror.BadRequest("Refund amount must be greater than zero for a partial approval")
	}
	return decimal.Min(*in.RefundAmount, remaining), entity.RefundStatusPartiallyApproved, nil
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, contract.ErrStatusChanged):
		return apperror.Wrap(apperror.KindConflict, err, "Refund request has already been processed")
	case errors.Is(err, contract.ErrRecordMissing):
		return apperror.Wrap(apperror.KindNotFound, err, "Refund request not found")
	}
	return err
}

// revert puts the request back to PENDING so the admin can retry. The failure is appended
// to the admin's notes. A failing revert is only logged.
func (p *Processor) revert(ctx context.Context, uow unitofwork.UnitOfWork, refund *entity.RefundRequest, adminId uuid.UUID, note string) {
	approved := refund.Status
	if refund.AdminNotes != "" {
		refund.AdminNotes += "\n" + note
	} else {
		refund.AdminNotes = note
	}
	refund.Status = entity.RefundStatusPending
	refund.RefundAmount = nil

	err := unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := tx.RefundRepository().UpdateIfStatus(ctx, refund, approved); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    adminId,
			Action:     entity.AuditActionRefundReverted,
			Severity:   entity.AuditSeverityWarning,
			EntityType: auditEntityType,
			EntityId:   refund.Id.String(),
			Details:    map[string]interface{}{"note": note},
		})
	})
	if err != nil {
		p.logger.Error("REFUND", "Failed to revert refund request to pending", map[string]interface{}{
			"refundId": refund.Id.String(),
			"error":    err.Error(),
		})
	}
}

func (p *Processor) notifyAuthor(ctx context.Context, refund *entity.RefundRequest, build func(to, name string) mailer.Message) {
	if refund.AuthorProfile == nil || refund.AuthorProfile.User == nil || refund.AuthorProfile.User.Email == "" {
		p.logger.Warn("REFUND", "Author has no email, skipping notification", map[string]interface{}{"refundId": refund.Id.String()})
		return
	}

	name := refund.AuthorProfile.PenName
	if name == "" {
		name = refund.AuthorProfile.User.FullName
	}
	if err := p.mailer.Send(ctx, build(refund.AuthorProfile.User.Email, name)); err != nil {
		p.logger.Warn("REFUND", "Failed to send author notification", map[string]interface{}{
			"refundId": refund.Id.String(),
			"error":    err.Error(),
		})
	}
}

func authorUserId(refund *entity.RefundRequest) (uuid.UUID, bool) {
	if refund.AuthorProfile == nil {
		return uuid.Nil, false
	}
	return refund.AuthorProfile.UserId, true
}
