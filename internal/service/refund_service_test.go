package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/memory"
	"bookreview-be/internal/repository/unitofwork"
	adminEvents "bookreview-be/pkg/admin/events"
	"bookreview-be/pkg/admin/refund"
	"bookreview-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor string
}

func (c *captureSender) Send(ctx context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.To == c.failFor {
		return errors.New("mailbox full")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) recipients() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		out = append(out, m.To)
	}
	return out
}

type stubGateway struct{}

func (stubGateway) Name() string { return "stub" }

func (stubGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	return &payment.RefundResult{ProviderRefundId: "re_stub", Status: "succeeded"}, nil
}

type refundFixture struct {
	ctx        context.Context
	factory    unitofwork.RepositoryFactory
	svc        IRefundService
	sender     *captureSender
	authorUser *entity.User
	author     *entity.AuthorProfile
	otherUser  *entity.User
	purchase   *entity.CreditPurchase
	adminId    uuid.UUID
}

func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	uow := factory.NewUnitOfWork(ctx)

	admin := &entity.User{Email: "admin@example.com", FullName: "Admin", Role: entity.UserRoleAdmin}
	flaky := &entity.User{Email: "flaky@example.com", FullName: "Flaky Admin", Role: entity.UserRoleAdmin}
	retired := &entity.User{Email: "retired@example.com", FullName: "Retired", Role: entity.UserRoleAdmin, Status: entity.UserStatusSuspended}
	for _, u := range []*entity.User{admin, flaky, retired} {
		require.NoError(t, uow.UserRepository().Create(ctx, u))
	}

	authorUser := &entity.User{Email: "author@example.com", FullName: "Author", Role: entity.UserRoleAuthor}
	otherUser := &entity.User{Email: "other@example.com", FullName: "Other", Role: entity.UserRoleAuthor}
	require.NoError(t, uow.UserRepository().Create(ctx, authorUser))
	require.NoError(t, uow.UserRepository().Create(ctx, otherUser))

	author := &entity.AuthorProfile{UserId: authorUser.Id, PenName: "Pen", TotalCreditsPurchased: 50, AvailableCredits: 50}
	require.NoError(t, uow.ProfileRepository().CreateAuthor(ctx, author))
	require.NoError(t, uow.ProfileRepository().CreateAuthor(ctx, &entity.AuthorProfile{UserId: otherUser.Id, PenName: "Other"}))

	paymentId := "pi_999"
	purchase := &entity.CreditPurchase{
		AuthorProfileId: author.Id,
		Credits:         50,
		AmountPaid:      decimal.RequireFromString("49.99"),
		Currency:        "usd",
		PaymentStatus:   entity.PaymentStatusCompleted,
		StripePaymentId: &paymentId,
		PurchaseDate:    time.Now().AddDate(0, 0, -5),
	}
	require.NoError(t, uow.CreditPurchaseRepository().Create(ctx, purchase))

	log := logger.NewNop()
	sender := &captureSender{failFor: flaky.Email}
	publisher := adminEvents.NewNatsPublisher(nil, log)
	processor := refund.NewProcessor(log, publisher, stubGateway{}, sender)
	svc := NewRefundService(factory, log, refund.NewPolicy(30), processor, NewAdminDirectory(factory, time.Minute), publisher, sender)

	return &refundFixture{
		ctx:        ctx,
		factory:    factory,
		svc:        svc,
		sender:     sender,
		authorUser: authorUser,
		author:     author,
		otherUser:  otherUser,
		purchase:   purchase,
		adminId:    admin.Id,
	}
}

func (f *refundFixture) request(t *testing.T) *dto.RefundRequestResponse {
	t.Helper()
	res, err := f.svc.CreateRequest(f.ctx, f.authorUser.Id, dto.CreateRefundRequest{
		CreditPurchaseId: f.purchase.Id,
		Reason:           string(entity.RefundReasonChangedMind),
		Explanation:      "  no longer needed  ",
	})
	require.NoError(t, err)
	return res
}

func TestEligibilityForFreshPurchase(t *testing.T) {
	f := newRefundFixture(t)

	res, err := f.svc.CheckEligibility(f.ctx, f.authorUser.Id, f.purchase.Id)
	require.NoError(t, err)
	assert.True(t, res.IsEligible)
	assert.Equal(t, 5, res.DaysSincePurchase)
	assert.Equal(t, 25, res.DaysRemaining)
	assert.Equal(t, 50, res.Credits)
}

func TestEligibilityBlockedByActiveCampaign(t *testing.T) {
	f := newRefundFixture(t)
	book := &entity.Book{AuthorProfileId: &f.author.Id, Title: "Live", Status: entity.BookStatusActive}
	require.NoError(t, f.factory.NewUnitOfWork(f.ctx).BookRepository().Create(f.ctx, book))

	res, err := f.svc.CheckEligibility(f.ctx, f.authorUser.Id, f.purchase.Id)
	require.NoError(t, err)
	assert.False(t, res.IsEligible)
	assert.Equal(t, "Cannot refund while you have active campaigns", res.Reason)

	_, err = f.svc.CreateRequest(f.ctx, f.authorUser.Id, dto.CreateRefundRequest{
		CreditPurchaseId: f.purchase.Id,
		Reason:           string(entity.RefundReasonOther),
	})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "Cannot refund while you have active campaigns", apperror.MessageOf(err))
}

func TestOwnershipIsEnforced(t *testing.T) {
	f := newRefundFixture(t)

	_, err := f.svc.CheckEligibility(f.ctx, f.otherUser.Id, f.purchase.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.svc.CreateRequest(f.ctx, f.otherUser.Id, dto.CreateRefundRequest{
		CreditPurchaseId: f.purchase.Id,
		Reason:           string(entity.RefundReasonOther),
	})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.svc.CheckEligibility(f.ctx, f.authorUser.Id, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	created := f.request(t)
	_, err = f.svc.GetAuthorRequest(f.ctx, f.otherUser.Id, created.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	err = f.svc.CancelRequest(f.ctx, f.otherUser.Id, created.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestCreateRequestNotifiesActiveAdmins(t *testing.T) {
	f := newRefundFixture(t)

	res := f.request(t)
	assert.Equal(t, string(entity.RefundStatusPending), res.Status)
	assert.Equal(t, "no longer needed", res.Explanation)

	// The flaky admin's failure does not stop the others; the suspended admin is skipped
	assert.Equal(t, []string{"admin@example.com"}, f.sender.recipients())

	logs, _, err := f.factory.NewUnitOfWork(f.ctx).AuditLogRepository().FindAll(f.ctx, contract.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionRefundRequested, logs[0].Action)
}

func TestSecondRequestIsBlockedWhileOneIsOpen(t *testing.T) {
	f := newRefundFixture(t)
	first := f.request(t)

	_, err := f.svc.CreateRequest(f.ctx, f.authorUser.Id, dto.CreateRefundRequest{
		CreditPurchaseId: f.purchase.Id,
		Reason:           string(entity.RefundReasonOther),
	})
	assert.Equal(t, "A refund request is already open for this purchase", apperror.MessageOf(err))

	res, err := f.svc.CheckEligibility(f.ctx, f.authorUser.Id, f.purchase.Id)
	require.NoError(t, err)
	require.NotNil(t, res.ExistingRequestId)
	assert.Equal(t, first.Id, *res.ExistingRequestId)
}

func TestCancelRequestOnlyWhilePending(t *testing.T) {
	f := newRefundFixture(t)
	first := f.request(t)

	require.NoError(t, f.svc.CancelRequest(f.ctx, f.authorUser.Id, first.Id))
	_, err := f.svc.GetAuthorRequest(f.ctx, f.authorUser.Id, first.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	second := f.request(t)
	_, err = f.svc.ProcessRequest(f.ctx, f.adminId, second.Id, dto.ProcessRefundRequest{Decision: "reject", AdminNotes: "policy"})
	require.NoError(t, err)

	err = f.svc.CancelRequest(f.ctx, f.authorUser.Id, second.Id)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestListingsCarryLiveEligibility(t *testing.T) {
	f := newRefundFixture(t)
	created := f.request(t)

	mine, err := f.svc.GetAuthorRequests(f.ctx, f.authorUser.Id)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Eligibility)
	assert.Equal(t, 5, mine[0].Eligibility.DaysSincePurchase)

	pending, err := f.svc.GetAllRequests(f.ctx, "pending", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Total)
	assert.Equal(t, 1, pending.Page)
	assert.Equal(t, 10, pending.Limit)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "author@example.com", pending.Items[0].Author.Email)
	assert.Equal(t, 50, pending.Items[0].Purchase.Credits)

	_, err = f.svc.GetAllRequests(f.ctx, "bogus", 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	detail, err := f.svc.GetRequest(f.ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, detail.Id)
}

func TestProcessRequestCompletesFullRefund(t *testing.T) {
	f := newRefundFixture(t)
	created := f.request(t)

	res, err := f.svc.ProcessRequest(f.ctx, f.adminId, created.Id, dto.ProcessRefundRequest{Decision: "approve"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RefundStatusCompleted), res.Status)
	assert.Equal(t, "re_stub", res.StripeRefundId)

	res2, err := f.svc.CheckEligibility(f.ctx, f.authorUser.Id, f.purchase.Id)
	require.NoError(t, err)
	assert.Equal(t, "This purchase has already been refunded", res2.Reason)
}

func TestPartialRefundEndsEligibility(t *testing.T) {
	f := newRefundFixture(t)
	created := f.request(t)

	amount := decimal.RequireFromString("40")
	res, err := f.svc.ProcessRequest(f.ctx, f.adminId, created.Id, dto.ProcessRefundRequest{Decision: "approve_partial", RefundAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RefundStatusCompleted), res.Status)

	eligibility, err := f.svc.CheckEligibility(f.ctx, f.authorUser.Id, f.purchase.Id)
	require.NoError(t, err)
	assert.False(t, eligibility.IsEligible)
	assert.Equal(t, "This purchase has already been refunded", eligibility.Reason)

	_, err = f.svc.CreateRequest(f.ctx, f.authorUser.Id, dto.CreateRefundRequest{
		CreditPurchaseId: f.purchase.Id,
		Reason:           string(entity.RefundReasonOther),
	})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}
