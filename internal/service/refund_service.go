package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/pkg/admin/audit"
	adminEvents "bookreview-be/pkg/admin/events"
	"bookreview-be/pkg/admin/mapper"
	"bookreview-be/pkg/admin/refund"

	"github.com/google/uuid"
)

const (
	defaultRefundPageSize = 10
	maxRefundPageSize     = 100
)

type IRefundService interface {
	// Author side, keyed by the authenticated user id
	CheckEligibility(ctx context.Context, userId, creditPurchaseId uuid.UUID) (*dto.RefundEligibilityResponse, error)
	CreateRequest(ctx context.Context, userId uuid.UUID, req dto.CreateRefundRequest) (*dto.RefundRequestResponse, error)
	GetAuthorRequests(ctx context.Context, userId uuid.UUID) ([]*dto.RefundRequestResponse, error)
	GetAuthorRequest(ctx context.Context, userId, requestId uuid.UUID) (*dto.RefundRequestResponse, error)
	CancelRequest(ctx context.Context, userId, requestId uuid.UUID) error

	// Admin side
	GetAllRequests(ctx context.Context, status string, page, limit int) (*dto.PaginatedResponse[*dto.AdminRefundRequestResponse], error)
	GetRequest(ctx context.Context, requestId uuid.UUID) (*dto.AdminRefundRequestResponse, error)
	ProcessRequest(ctx context.Context, adminId, requestId uuid.UUID, req dto.ProcessRefundRequest) (*dto.ProcessRefundResponse, error)
}

type refundService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	policy     refund.Policy
	processor  *refund.Processor
	admins     *AdminDirectory
	publisher  adminEvents.Publisher
	mailer     mailer.Sender
	now        func() time.Time
}

func NewRefundService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	policy refund.Policy,
	processor *refund.Processor,
	admins *AdminDirectory,
	publisher adminEvents.Publisher,
	sender mailer.Sender,
) IRefundService {
	return &refundService{
		uowFactory: uowFactory,
		logger:     logger,
		policy:     policy,
		processor:  processor,
		admins:     admins,
		publisher:  publisher,
		mailer:     sender,
		now:        time.Now,
	}
}

func (s *refundService) CheckEligibility(ctx context.Context, userId, creditPurchaseId uuid.UUID) (*dto.RefundEligibilityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	author, err := s.authorFor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	purchase, err := s.ownedPurchase(ctx, uow, author, creditPurchaseId)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.evaluate(ctx, uow, purchase, author)
	if err != nil {
		return nil, err
	}
	return mapper.EligibilityToResponse(eligibility), nil
}

// CreateRequest re-runs the policy server-side; a client-side eligibility check is never trusted.
func (s *refundService) CreateRequest(ctx context.Context, userId uuid.UUID, req dto.CreateRefundRequest) (*dto.RefundRequestResponse, error) {
	reason := entity.RefundReason(req.Reason)
	if !reason.IsValid() {
		return nil, apperror.BadRequest("Invalid refund reason %q", req.Reason)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	author, err := s.authorFor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	purchase, err := s.ownedPurchase(ctx, uow, author, req.CreditPurchaseId)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.evaluate(ctx, uow, purchase, author)
	if err != nil {
		return nil, err
	}
	if !eligibility.IsEligible {
		return nil, apperror.BadRequest("%s", eligibility.Reason)
	}

	request := &entity.RefundRequest{
		CreditPurchaseId: purchase.Id,
		AuthorProfileId:  author.Id,
		Reason:           reason,
		Explanation:      strings.TrimSpace(req.Explanation),
		Status:           entity.RefundStatusPending,
	}
	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := tx.RefundRepository().Create(ctx, request); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    userId,
			Action:     entity.AuditActionRefundRequested,
			EntityType: "refund_request",
			EntityId:   request.Id.String(),
			Details: map[string]interface{}{
				"creditPurchaseId": purchase.Id.String(),
				"reason":           string(reason),
				"amount":           purchase.AmountPaid.StringFixed(2),
				"credits":          purchase.Credits,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("REFUND", "Refund requested", map[string]interface{}{
		"refundId":         request.Id.String(),
		"creditPurchaseId": purchase.Id.String(),
		"authorProfileId":  author.Id.String(),
	})

	s.notifyAdmins(ctx, request, purchase)
	s.publisher.PublishRefundRequested(ctx, request.Id, userId, purchase.AmountPaid, purchase.Credits)

	return mapper.RefundToResponse(request, nil), nil
}

func (s *refundService) GetAuthorRequests(ctx context.Context, userId uuid.UUID) ([]*dto.RefundRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	author, err := s.authorFor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	requests, _, err := uow.RefundRepository().FindAll(ctx, contract.RefundRequestFilter{AuthorProfileId: &author.Id})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RefundRequestResponse, 0, len(requests))
	for _, r := range requests {
		eligibility, err := s.liveEligibility(ctx, uow, r)
		if err != nil {
			return nil, err
		}
		res = append(res, mapper.RefundToResponse(r, eligibility))
	}
	return res, nil
}

func (s *refundService) GetAuthorRequest(ctx context.Context, userId, requestId uuid.UUID) (*dto.RefundRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	author, err := s.authorFor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	request, err := s.ownedRequest(ctx, uow, author, requestId)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.liveEligibility(ctx, uow, request)
	if err != nil {
		return nil, err
	}
	return mapper.RefundToResponse(request, eligibility), nil
}

// CancelRequest deletes a request the author still owns and that no admin has touched.
func (s *refundService) CancelRequest(ctx context.Context, userId, requestId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	author, err := s.authorFor(ctx, uow, userId)
	if err != nil {
		return err
	}
	request, err := s.ownedRequest(ctx, uow, author, requestId)
	if err != nil {
		return err
	}
	if request.Status != entity.RefundStatusPending {
		return apperror.BadRequest("Only pending refund requests can be cancelled")
	}

	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := tx.RefundRepository().Delete(ctx, request.Id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    userId,
			Action:     entity.AuditActionRefundCancelled,
			EntityType: "refund_request",
			EntityId:   request.Id.String(),
			Details:    map[string]interface{}{"creditPurchaseId": request.CreditPurchaseId.String()},
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("REFUND", "Refund request cancelled by author", map[string]interface{}{"refundId": request.Id.String()})
	return nil
}

func (s *refundService) GetAllRequests(ctx context.Context, status string, page, limit int) (*dto.PaginatedResponse[*dto.AdminRefundRequestResponse], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultRefundPageSize
	}
	if limit > maxRefundPageSize {
		limit = maxRefundPageSize
	}

	filter := contract.RefundRequestFilter{Page: page, Limit: limit}
	if status != "" {
		st := entity.RefundStatus(strings.ToUpper(status))
		if !isKnownRefundStatus(st) {
			return nil, apperror.BadRequest("Unknown refund status %q", status)
		}
		filter.Status = &st
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	requests, total, err := uow.RefundRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AdminRefundRequestResponse, 0, len(requests))
	for _, r := range requests {
		eligibility, err := s.liveEligibility(ctx, uow, r)
		if err != nil {
			return nil, err
		}
		items = append(items, mapper.RefundToAdminResponse(r, eligibility))
	}
	return &dto.PaginatedResponse[*dto.AdminRefundRequestResponse]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *refundService) GetRequest(ctx context.Context, requestId uuid.UUID) (*dto.AdminRefundRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	request, err := uow.RefundRepository().FindById(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NotFound("Refund request not found")
	}

	eligibility, err := s.liveEligibility(ctx, uow, request)
	if err != nil {
		return nil, err
	}
	return mapper.RefundToAdminResponse(request, eligibility), nil
}

func (s *refundService) ProcessRequest(ctx context.Context, adminId, requestId uuid.UUID, req dto.ProcessRefundRequest) (*dto.ProcessRefundResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.processor.ProcessRequest(ctx, uow, refund.ProcessInput{
		RequestId:    requestId,
		AdminId:      adminId,
		Decision:     refund.Decision(req.Decision),
		AdminNotes:   req.AdminNotes,
		RefundAmount: req.RefundAmount,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProcessRefundResponse{
		RefundId:       result.RefundId,
		Status:         string(result.Status),
		RefundAmount:   result.RefundAmount,
		StripeRefundId: result.StripeRefundId,
		ProcessedAt:    result.ProcessedAt,
	}, nil
}

func (s *refundService) authorFor(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.AuthorProfile, error) {
	author, err := uow.ProfileRepository().FindAuthorByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, apperror.NotFound("Author profile not found")
	}
	return author, nil
}

func (s *refundService) ownedPurchase(ctx context.Context, uow unitofwork.UnitOfWork, author *entity.AuthorProfile, purchaseId uuid.UUID) (*entity.CreditPurchase, error) {
	purchase, err := uow.CreditPurchaseRepository().FindById(ctx, purchaseId)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NotFound("Credit purchase not found")
	}
	if purchase.AuthorProfileId != author.Id {
		return nil, apperror.Forbidden("This purchase does not belong to you")
	}
	return purchase, nil
}

func (s *refundService) ownedRequest(ctx context.Context, uow unitofwork.UnitOfWork, author *entity.AuthorProfile, requestId uuid.UUID) (*entity.RefundRequest, error) {
	request, err := uow.RefundRepository().FindById(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NotFound("Refund request not found")
	}
	if request.AuthorProfileId != author.Id {
		return nil, apperror.Forbidden("This refund request does not belong to you")
	}
	return request, nil
}

// evaluate gathers the policy inputs. Nothing here is cached: day counts depend on now.
func (s *refundService) evaluate(ctx context.Context, uow unitofwork.UnitOfWork, purchase *entity.CreditPurchase, author *entity.AuthorProfile) (refund.Eligibility, error) {
	running, err := uow.BookRepository().CountRunningCampaigns(ctx, author.Id)
	if err != nil {
		return refund.Eligibility{}, err
	}
	open, err := uow.RefundRepository().FindOpenByPurchase(ctx, purchase.Id)
	if err != nil {
		return refund.Eligibility{}, err
	}
	refunded, err := uow.RefundRepository().SumCompleted(ctx, purchase.Id)
	if err != nil {
		return refund.Eligibility{}, err
	}

	return s.policy.CheckEligibility(refund.EligibilityInput{
		Purchase:           purchase,
		Author:             author,
		HasActiveCampaigns: running > 0,
		OpenRequest:        open,
		RefundedAmount:     refunded,
		Now:                s.now(),
	}), nil
}

func (s *refundService) liveEligibility(ctx context.Context, uow unitofwork.UnitOfWork, r *entity.RefundRequest) (*dto.RefundEligibilityResponse, error) {
	if r.CreditPurchase == nil || r.AuthorProfile == nil {
		return nil, nil
	}
	eligibility, err := s.evaluate(ctx, uow, r.CreditPurchase, r.AuthorProfile)
	if err != nil {
		return nil, err
	}
	return mapper.EligibilityToResponse(eligibility), nil
}

// notifyAdmins emails every active admin. Each send is independent and failures are only logged.
func (s *refundService) notifyAdmins(ctx context.Context, request *entity.RefundRequest, purchase *entity.CreditPurchase) {
	admins, err := s.admins.ActiveAdmins(ctx)
	if err != nil {
		s.logger.Warn("REFUND", "Could not load admins to notify", map[string]interface{}{"error": err.Error()})
		return
	}

	amount := fmt.Sprintf("%s %s", purchase.AmountPaid.StringFixed(2), strings.ToUpper(purchase.Currency))
	for _, admin := range admins {
		msg := mailer.RefundRequested(admin.Email, admin.FullName, request.Id.String(), amount, purchase.Credits)
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Warn("REFUND", "Failed to notify admin of refund request", map[string]interface{}{
				"adminId":  admin.Id.String(),
				"refundId": request.Id.String(),
				"error":    err.Error(),
			})
		}
	}
}

func isKnownRefundStatus(st entity.RefundStatus) bool {
	switch st {
	case entity.RefundStatusPending, entity.RefundStatusApproved, entity.RefundStatusPartiallyApproved,
		entity.RefundStatusRejected, entity.RefundStatusProcessing, entity.RefundStatusCompleted:
		return true
	default:
		return false
	}
}
