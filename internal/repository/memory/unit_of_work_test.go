package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())

	book := &entity.Book{Title: "Dune", Status: entity.BookStatusActive, CreditsRemaining: 5}
	require.NoError(t, factory.NewUnitOfWork(ctx).BookRepository().Create(ctx, book))

	boom := errors.New("boom")
	err := unitofwork.RunInTx(ctx, factory.NewUnitOfWork(ctx), func(uow unitofwork.UnitOfWork) error {
		if err := uow.BookRepository().AdjustCreditsRemaining(ctx, book.Id, 3); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := factory.NewUnitOfWork(ctx).BookRepository().FindById(ctx, book.Id)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.CreditsRemaining)
}

func TestRollbackKeepsWritesMadeOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())

	dune := &entity.Book{Title: "Dune", Status: entity.BookStatusActive, CreditsRemaining: 5}
	require.NoError(t, factory.NewUnitOfWork(ctx).BookRepository().Create(ctx, dune))

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	require.NoError(t, tx.BookRepository().AdjustCreditsRemaining(ctx, dune.Id, 3))

	emma := &entity.Book{Title: "Emma", Status: entity.BookStatusActive, CreditsRemaining: 2}
	done := make(chan error, 1)
	go func() {
		done <- factory.NewUnitOfWork(ctx).BookRepository().Create(ctx, emma)
	}()

	select {
	case err := <-done:
		t.Fatalf("write outside the transaction finished while it was open: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, tx.Rollback())
	require.NoError(t, <-done)

	reader := factory.NewUnitOfWork(ctx).BookRepository()
	kept, err := reader.FindById(ctx, emma.Id)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "Emma", kept.Title)

	restored, err := reader.FindById(ctx, dune.Id)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.CreditsRemaining)
}

func TestAssignmentUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx).AssignmentRepository()

	a := &entity.ReaderAssignment{BookId: uuid.New(), ReaderProfileId: uuid.New(), Status: entity.AssignmentStatusWaiting}
	require.NoError(t, repo.Create(ctx, a))
	assert.Equal(t, 1, a.Version)

	stale := *a
	a.ExtensionReason = "first"
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, 2, a.Version)

	stale.ExtensionReason = "second"
	assert.ErrorIs(t, repo.Update(ctx, &stale), entity.ErrVersionConflict)
}

func TestFindExceptionsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx).AssignmentRepository()
	bookId := uuid.New()
	now := time.Now()

	plain := &entity.ReaderAssignment{BookId: bookId, ReaderProfileId: uuid.New(), Status: entity.AssignmentStatusWaiting}
	older := &entity.ReaderAssignment{BookId: bookId, ReaderProfileId: uuid.New(), Status: entity.AssignmentStatusWaiting,
		DeadlineExtendedAt: &now, UpdatedAt: now.Add(-time.Hour)}
	newer := &entity.ReaderAssignment{BookId: bookId, ReaderProfileId: uuid.New(), Status: entity.AssignmentStatusCancelled,
		CancelledBy: &bookId, UpdatedAt: now}
	other := &entity.ReaderAssignment{BookId: uuid.New(), ReaderProfileId: uuid.New(), Status: entity.AssignmentStatusReassigned,
		ReassignedAt: &now, UpdatedAt: now}
	for _, a := range []*entity.ReaderAssignment{plain, older, newer, other} {
		require.NoError(t, repo.Create(ctx, a))
	}

	rows, err := repo.FindExceptions(ctx, contract.AssignmentExceptionFilter{BookId: &bookId, Limit: 50})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.Id, rows[0].Id)
	assert.Equal(t, older.Id, rows[1].Id)

	capped, err := repo.FindExceptions(ctx, contract.AssignmentExceptionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}

func TestRefundFindAllPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx).RefundRepository()
	purchaseId := uuid.New()
	base := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.RefundRequest{
			CreditPurchaseId: purchaseId,
			AuthorProfileId:  uuid.New(),
			Reason:           entity.RefundReasonOther,
			Status:           entity.RefundStatusRejected,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, total, err := repo.FindAll(ctx, contract.RefundRequestFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	open, err := repo.FindOpenByPurchase(ctx, purchaseId)
	require.NoError(t, err)
	assert.Nil(t, open)
}
