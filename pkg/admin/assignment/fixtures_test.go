package assignment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/memory"
	"bookreview-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishDeadlineChanged(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle string, newDeadline time.Time, hours int) {
	p.events = append(p.events, "deadline")
}

func (p *recordingPublisher) PublishReaderReassigned(ctx context.Context, actorId, oldAssignmentId, newAssignmentId, readerUserId uuid.UUID, oldBookTitle, newBookTitle string) {
	p.events = append(p.events, "reassigned")
}

func (p *recordingPublisher) PublishAssignmentCancelled(ctx context.Context, actorId, assignmentId, readerUserId uuid.UUID, bookTitle, reason string) {
	p.events = append(p.events, "cancelled")
}

func (p *recordingPublisher) PublishRefundRequested(ctx context.Context, refundId, authorUserId uuid.UUID, amount decimal.Decimal, credits int) {
}

func (p *recordingPublisher) PublishRefundCompleted(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, amount decimal.Decimal) {
}

func (p *recordingPublisher) PublishRefundRejected(ctx context.Context, actorId, refundId, authorUserId uuid.UUID, notes string) {
}

type fixture struct {
	ctx       context.Context
	factory   unitofwork.RepositoryFactory
	manager   *Manager
	sender    *recordingSender
	publisher *recordingPublisher
	adminId   uuid.UUID
	author    *entity.AuthorProfile
	reader    *entity.ReaderProfile
	book      *entity.Book
	otherBook *entity.Book
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	uow := factory.NewUnitOfWork(ctx)

	authorUser := &entity.User{Email: "author@example.com", FullName: "Author", Role: entity.UserRoleAuthor}
	readerUser := &entity.User{Email: "reader@example.com", FullName: "Reader", Role: entity.UserRoleReader}
	require.NoError(t, uow.UserRepository().Create(ctx, authorUser))
	require.NoError(t, uow.UserRepository().Create(ctx, readerUser))

	author := &entity.AuthorProfile{UserId: authorUser.Id, PenName: "A. Writer", AvailableCredits: 10}
	reader := &entity.ReaderProfile{UserId: readerUser.Id, DisplayName: "Ana"}
	require.NoError(t, uow.ProfileRepository().CreateAuthor(ctx, author))
	require.NoError(t, uow.ProfileRepository().CreateReader(ctx, reader))

	book := &entity.Book{AuthorProfileId: &author.Id, Title: "Dune", Status: entity.BookStatusActive, CreditsRemaining: 20}
	otherBook := &entity.Book{AuthorProfileId: &author.Id, Title: "Emma", Status: entity.BookStatusActive, CreditsRemaining: 5}
	require.NoError(t, uow.BookRepository().Create(ctx, book))
	require.NoError(t, uow.BookRepository().Create(ctx, otherBook))

	sender := &recordingSender{}
	publisher := &recordingPublisher{}
	return &fixture{
		ctx:       ctx,
		factory:   factory,
		manager:   NewManager(logger.NewNop(), publisher, sender).WithClock(func() time.Time { return fixedNow }),
		sender:    sender,
		publisher: publisher,
		adminId:   uuid.New(),
		author:    author,
		reader:    reader,
		book:      book,
		otherBook: otherBook,
	}
}

func (f *fixture) uow() unitofwork.UnitOfWork {
	return f.factory.NewUnitOfWork(f.ctx)
}

func (f *fixture) assignment(t *testing.T, mutate func(a *entity.ReaderAssignment)) *entity.ReaderAssignment {
	t.Helper()
	deadline := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	a := &entity.ReaderAssignment{
		BookId:          f.book.Id,
		ReaderProfileId: f.reader.Id,
		Status:          entity.AssignmentStatusInProgress,
		FormatAssigned:  entity.BookFormatEbook,
		CreditsValue:    1,
		DeadlineAt:      &deadline,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, f.uow().AssignmentRepository().Create(f.ctx, a))
	return a
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entity.ReaderAssignment {
	t.Helper()
	a, err := f.uow().AssignmentRepository().FindById(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a
}

func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := f.uow().AuditLogRepository().FindAll(f.ctx, contract.AuditLogFilter{})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}
