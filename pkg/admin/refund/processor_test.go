package refund

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/memory"
	"bookreview-be/internal/repository/unitofwork"
	adminEvents "bookreview-be/pkg/admin/events"
	"bookreview-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls []payment.RefundRequest
	err   error
	hold  chan struct{}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if g.hold != nil {
		<-g.hold
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.RefundResult{ProviderRefundId: "re_001", Status: "succeeded"}, nil
}

type inbox struct {
	sent []mailer.Message
}

func (i *inbox) Send(ctx context.Context, msg mailer.Message) error {
	i.sent = append(i.sent, msg)
	return nil
}

type processorFixture struct {
	ctx       context.Context
	factory   unitofwork.RepositoryFactory
	gateway   *fakeGateway
	inbox     *inbox
	processor *Processor
	adminId   uuid.UUID
	purchase  *entity.CreditPurchase
	refund    *entity.RefundRequest
}

func newProcessorFixture(t *testing.T, paymentId *string) *processorFixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	uow := factory.NewUnitOfWork(ctx)

	user := &entity.User{Email: "author@example.com", FullName: "Author", Role: entity.UserRoleAuthor}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	author := &entity.AuthorProfile{UserId: user.Id, PenName: "A. Writer", TotalCreditsPurchased: 50}
	require.NoError(t, uow.ProfileRepository().CreateAuthor(ctx, author))

	purchase := &entity.CreditPurchase{
		AuthorProfileId: author.Id,
		Credits:         50,
		AmountPaid:      decimal.RequireFromString("49.99"),
		Currency:        "usd",
		PaymentStatus:   entity.PaymentStatusCompleted,
		StripePaymentId: paymentId,
	}
	require.NoError(t, uow.CreditPurchaseRepository().Create(ctx, purchase))

	refund := &entity.RefundRequest{
		CreditPurchaseId: purchase.Id,
		AuthorProfileId:  author.Id,
		Reason:           entity.RefundReasonChangedMind,
		Status:           entity.RefundStatusPending,
	}
	require.NoError(t, uow.RefundRepository().Create(ctx, refund))

	gateway := &fakeGateway{}
	box := &inbox{}
	log := logger.NewNop()
	processor := NewProcessor(log, adminEvents.NewNatsPublisher(nil, log), gateway, box).
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })

	return &processorFixture{
		ctx:       ctx,
		factory:   factory,
		gateway:   gateway,
		inbox:     box,
		processor: processor,
		adminId:   uuid.New(),
		purchase:  purchase,
		refund:    refund,
	}
}

func withPaymentId() *string {
	id := "pi_123"
	return &id
}

func (f *processorFixture) process(decision Decision, amount *decimal.Decimal) (*ProcessResult, error) {
	return f.processor.ProcessRequest(f.ctx, f.factory.NewUnitOfWork(f.ctx), ProcessInput{
		RequestId:    f.refund.Id,
		AdminId:      f.adminId,
		Decision:     decision,
		AdminNotes:   "checked",
		RefundAmount: amount,
	})
}

func (f *processorFixture) stored(t *testing.T) *entity.RefundRequest {
	t.Helper()
	r, err := f.factory.NewUnitOfWork(f.ctx).RefundRepository().FindById(f.ctx, f.refund.Id)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func (f *processorFixture) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := f.factory.NewUnitOfWork(f.ctx).AuditLogRepository().FindAll(f.ctx, contract.AuditLogFilter{})
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func TestFullApprovalCompletesAndMarksPurchaseRefunded(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())

	res, err := f.process(DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusCompleted, res.Status)
	assert.Equal(t, "re_001", res.StripeRefundId)
	assert.True(t, res.RefundAmount.Equal(decimal.RequireFromString("49.99")))

	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, int64(4999), f.gateway.calls[0].AmountMinor)
	assert.Equal(t, "pi_123", f.gateway.calls[0].PaymentReference)

	stored := f.stored(t)
	assert.Equal(t, entity.RefundStatusCompleted, stored.Status)
	require.NotNil(t, stored.StripeRefundId)
	assert.Equal(t, "re_001", *stored.StripeRefundId)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Equal(t, entity.PaymentStatusRefunded, stored.CreditPurchase.PaymentStatus)

	require.Len(t, f.inbox.sent, 1)
	assert.Equal(t, "author@example.com", f.inbox.sent[0].To)
	assert.Equal(t, []string{entity.AuditActionRefundCompleted}, f.auditActions(t))
}

func TestPartialApprovalClampsToOriginal(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	requested := decimal.RequireFromString("80")

	res, err := f.process(DecisionApprovePartial, &requested)
	require.NoError(t, err)
	assert.True(t, res.RefundAmount.Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, int64(4999), f.gateway.calls[0].AmountMinor)
}

func TestPartialApprovalKeepsPurchaseCompleted(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	requested := decimal.RequireFromString("10.005")

	res, err := f.process(DecisionApprovePartial, &requested)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusCompleted, res.Status)
	assert.Equal(t, int64(1001), f.gateway.calls[0].AmountMinor)
	assert.Equal(t, entity.PaymentStatusCompleted, f.stored(t).CreditPurchase.PaymentStatus)
}

func TestPartialApprovalRequiresPositiveAmount(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	zero := decimal.Zero

	_, err := f.process(DecisionApprovePartial, nil)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	_, err = f.process(DecisionApprovePartial, &zero)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, entity.RefundStatusPending, f.stored(t).Status)
}

func TestGatewayFailureRevertsToPending(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	f.gateway.err = errors.New("charge already refunded")

	_, err := f.process(DecisionApprove, nil)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Contains(t, apperror.MessageOf(err), "charge already refunded")

	stored := f.stored(t)
	assert.Equal(t, entity.RefundStatusPending, stored.Status)
	assert.Equal(t, "checked\nRefund failed: charge already refunded", stored.AdminNotes)
	assert.Nil(t, stored.RefundAmount)
	assert.Nil(t, stored.StripeRefundId)
	assert.Equal(t, entity.PaymentStatusCompleted, stored.CreditPurchase.PaymentStatus)
	assert.Equal(t, []string{entity.AuditActionRefundReverted}, f.auditActions(t))
	assert.Empty(t, f.inbox.sent)

	// The admin can retry once the processor recovers
	f.gateway.err = nil
	res, err := f.process(DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusCompleted, res.Status)
}

func TestMissingPaymentReferenceRevertsWithoutCallingGateway(t *testing.T) {
	f := newProcessorFixture(t, nil)

	_, err := f.process(DecisionApprove, nil)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.ErrorIs(t, err, payment.ErrMissingPaymentReference)
	assert.Empty(t, f.gateway.calls)

	stored := f.stored(t)
	assert.Equal(t, entity.RefundStatusPending, stored.Status)
	assert.NotEmpty(t, stored.AdminNotes)
}

func TestRejectRecordsReviewAndNotifies(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())

	res, err := f.process(DecisionReject, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRejected, res.Status)

	stored := f.stored(t)
	assert.Equal(t, entity.RefundStatusRejected, stored.Status)
	assert.Equal(t, "checked", stored.AdminNotes)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, f.adminId, *stored.ReviewedBy)
	assert.Empty(t, f.gateway.calls)
	assert.Len(t, f.inbox.sent, 1)
	assert.Equal(t, []string{entity.AuditActionRefundRejected}, f.auditActions(t))
}

func TestProcessedRequestCannotBeProcessedAgain(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	_, err := f.process(DecisionReject, nil)
	require.NoError(t, err)

	for _, d := range []Decision{DecisionApprove, DecisionApprovePartial, DecisionReject} {
		_, err = f.process(d, nil)
		require.Error(t, err)
		assert.Equal(t, "Refund request has already been processed", apperror.MessageOf(err))
	}
}

func TestUnknownRequestAndDecision(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())

	_, err := f.processor.ProcessRequest(f.ctx, f.factory.NewUnitOfWork(f.ctx), ProcessInput{RequestId: uuid.New(), Decision: DecisionApprove})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.process(Decision("refund_twice"), nil)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

// pausedReads holds every FindById until all callers have read, so they all see the same status.
type pausedReads struct {
	unitofwork.UnitOfWork
	readers *sync.WaitGroup
}

func (u pausedReads) RefundRepository() contract.RefundRepository {
	return pausedRefunds{RefundRepository: u.UnitOfWork.RefundRepository(), readers: u.readers}
}

type pausedRefunds struct {
	contract.RefundRepository
	readers *sync.WaitGroup
}

func (r pausedRefunds) FindById(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	refund, err := r.RefundRepository.FindById(ctx, id)
	r.readers.Done()
	r.readers.Wait()
	return refund, err
}

// decideConcurrently runs distinct decisions past the same PENDING read. The gateway is held
// until the first decision returns, so a losing decision fails on the status change itself.
func (f *processorFixture) decideConcurrently(decisions ...Decision) map[Decision]error {
	readers := &sync.WaitGroup{}
	readers.Add(len(decisions))
	f.gateway.hold = make(chan struct{})

	type outcome struct {
		decision Decision
		err      error
	}
	results := make(chan outcome, len(decisions))
	for _, decision := range decisions {
		go func() {
			uow := pausedReads{UnitOfWork: f.factory.NewUnitOfWork(f.ctx), readers: readers}
			_, err := f.processor.ProcessRequest(f.ctx, uow, ProcessInput{
				RequestId: f.refund.Id,
				AdminId:   f.adminId,
				Decision:  decision,
			})
			results <- outcome{decision: decision, err: err}
		}()
	}

	errs := make(map[Decision]error, len(decisions))
	first := <-results
	errs[first.decision] = first.err
	close(f.gateway.hold)
	for range decisions[1:] {
		next := <-results
		errs[next.decision] = next.err
	}
	return errs
}

func TestConcurrentApprovalsPayOnce(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())

	readers := &sync.WaitGroup{}
	readers.Add(2)
	f.gateway.hold = make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			uow := pausedReads{UnitOfWork: f.factory.NewUnitOfWork(f.ctx), readers: readers}
			_, err := f.processor.ProcessRequest(f.ctx, uow, ProcessInput{
				RequestId: f.refund.Id,
				AdminId:   f.adminId,
				Decision:  DecisionApprove,
			})
			results <- err
		}()
	}

	loser := <-results
	close(f.gateway.hold)
	winner := <-results

	require.Error(t, loser)
	assert.True(t, apperror.Is(loser, apperror.KindConflict))
	assert.Equal(t, "Refund request has already been processed", apperror.MessageOf(loser))
	require.NoError(t, winner)

	assert.Len(t, f.gateway.calls, 1)
	assert.Equal(t, entity.RefundStatusCompleted, f.stored(t).Status)
	assert.Equal(t, []string{entity.AuditActionRefundCompleted}, f.auditActions(t))
}

func TestConcurrentRejectAndApproveApplyOne(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())

	errs := f.decideConcurrently(DecisionReject, DecisionApprove)

	rejectErr, approveErr := errs[DecisionReject], errs[DecisionApprove]
	require.True(t, (rejectErr == nil) != (approveErr == nil), "exactly one decision must apply: %v", errs)
	stored := f.stored(t)
	if rejectErr == nil {
		assert.Equal(t, entity.RefundStatusRejected, stored.Status)
		assert.Empty(t, f.gateway.calls)
		assert.True(t, apperror.Is(approveErr, apperror.KindConflict))
	} else {
		assert.Equal(t, entity.RefundStatusCompleted, stored.Status)
		assert.Len(t, f.gateway.calls, 1)
		assert.True(t, apperror.Is(rejectErr, apperror.KindConflict))
	}
}

func (f *processorFixture) openAnotherRequest(t *testing.T) {
	t.Helper()
	next := &entity.RefundRequest{
		CreditPurchaseId: f.purchase.Id,
		AuthorProfileId:  f.purchase.AuthorProfileId,
		Reason:           entity.RefundReasonChangedMind,
		Status:           entity.RefundStatusPending,
	}
	require.NoError(t, f.factory.NewUnitOfWork(f.ctx).RefundRepository().Create(f.ctx, next))
	f.refund = next
}

func TestLaterApprovalOnlyPaysWhatIsLeft(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	first := decimal.RequireFromString("40")
	_, err := f.process(DecisionApprovePartial, &first)
	require.NoError(t, err)

	f.openAnotherRequest(t)
	res, err := f.process(DecisionApprove, nil)
	require.NoError(t, err)
	assert.True(t, res.RefundAmount.Equal(decimal.RequireFromString("9.99")))

	require.Len(t, f.gateway.calls, 2)
	assert.Equal(t, int64(4000), f.gateway.calls[0].AmountMinor)
	assert.Equal(t, int64(999), f.gateway.calls[1].AmountMinor)
	assert.Equal(t, entity.PaymentStatusRefunded, f.stored(t).CreditPurchase.PaymentStatus)

	refunded, err := f.factory.NewUnitOfWork(f.ctx).RefundRepository().SumCompleted(f.ctx, f.purchase.Id)
	require.NoError(t, err)
	assert.True(t, refunded.Equal(f.purchase.AmountPaid))
}

func TestNothingLeftToRefund(t *testing.T) {
	f := newProcessorFixture(t, withPaymentId())
	_, err := f.process(DecisionApprove, nil)
	require.NoError(t, err)

	f.openAnotherRequest(t)
	extra := decimal.RequireFromString("5")
	_, err = f.process(DecisionApprovePartial, &extra)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, ReasonAlreadyRefunded, apperror.MessageOf(err))

	assert.Len(t, f.gateway.calls, 1)
	assert.Equal(t, entity.RefundStatusPending, f.stored(t).Status)
}
