package assignment

import (
	"testing"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendDeadlineAddsHours(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	res, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, 24, "tech issue", "")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), res.NewDeadline)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), res.OldDeadline)
	assert.Equal(t, 24, res.Hours)

	stored := f.reload(t, a.Id)
	assert.Equal(t, res.NewDeadline, *stored.DeadlineAt)
	assert.Equal(t, "tech issue", stored.ExtensionReason)
	require.NotNil(t, stored.DeadlineExtendedAt)
	assert.Equal(t, 2, stored.Version)

	assert.Equal(t, []string{entity.AuditActionDeadlineExtended}, f.auditActions(t))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "reader@example.com", f.sender.sent[0].To)
	assert.Equal(t, []string{"deadline"}, f.publisher.events)
}

func TestExtendThenShortenRestoresDeadline(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)
	original := *a.DeadlineAt

	for _, hours := range []int{1, 7, 48} {
		_, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, hours, "r", "")
		require.NoError(t, err)
		res, err := f.manager.ShortenDeadline(f.ctx, f.uow(), f.adminId, a.Id, hours, "r", "")
		require.NoError(t, err)
		assert.Equal(t, original, res.NewDeadline)
	}
}

func TestShortenDeadlineRejectsNowOrPast(t *testing.T) {
	f := newFixture(t)
	deadline := fixedNow.Add(10 * time.Hour)
	a := f.assignment(t, func(a *entity.ReaderAssignment) { a.DeadlineAt = &deadline })

	_, err := f.manager.ShortenDeadline(f.ctx, f.uow(), f.adminId, a.Id, 10, "too long", "")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	res, err := f.manager.ShortenDeadline(f.ctx, f.uow(), f.adminId, a.Id, 9, "ok", "")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), res.NewDeadline)
	assert.Equal(t, []string{entity.AuditActionDeadlineShortened}, f.auditActions(t))
}

func TestDeadlineChangeIsBounded(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)
	original := *a.DeadlineAt

	_, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, 3_000_000, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	_, err = f.manager.ShortenDeadline(f.ctx, f.uow(), f.adminId, a.Id, 3_000_000, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	// Deltas that wrap the duration never move the deadline the wrong way
	_, err = f.manager.moveDeadline(f.ctx, f.uow(), f.adminId, a.Id, 3_000_000, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	_, err = f.manager.moveDeadline(f.ctx, f.uow(), f.adminId, a.Id, -3_000_000, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	assert.Equal(t, original, *f.reload(t, a.Id).DeadlineAt)
	assert.Empty(t, f.auditActions(t))

	res, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, MaxDeadlineChangeHours, "r", "")
	require.NoError(t, err)
	assert.Equal(t, original.Add(MaxDeadlineChangeHours*time.Hour), res.NewDeadline)
}

func TestDeadlineChangesRequireDeadlineAndActiveStatus(t *testing.T) {
	f := newFixture(t)

	noDeadline := f.assignment(t, func(a *entity.ReaderAssignment) { a.DeadlineAt = nil })
	_, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, noDeadline.Id, 1, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	done := f.assignment(t, func(a *entity.ReaderAssignment) { a.Status = entity.AssignmentStatusCompleted })
	_, err = f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, done.Id, 1, "r", "")
	assert.ErrorIs(t, err, entity.ErrInvalidStatusTransition)

	_, err = f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, uuid.New(), 1, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, done.Id, 0, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.sender.fail = true
	a := f.assignment(t, nil)

	_, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, 2, "r", "")
	require.NoError(t, err)
	assert.NotNil(t, f.reload(t, a.Id).DeadlineExtendedAt)
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	stale, err := f.uow().AssignmentRepository().FindById(f.ctx, a.Id)
	require.NoError(t, err)

	_, err = f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, 1, "first", "")
	require.NoError(t, err)

	err = updateAssignment(f.ctx, f.uow(), stale)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestReassignReaderCreatesLinkedAssignment(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, func(a *entity.ReaderAssignment) {
		a.FormatAssigned = entity.BookFormatAudiobook
		a.CreditsValue = 2
	})

	res, err := f.manager.ReassignReader(f.ctx, f.uow(), f.adminId, a.Id, f.otherBook.Id, "book withdrawn", "")
	require.NoError(t, err)
	assert.Equal(t, a.Id, res.OldAssignmentId)
	assert.Equal(t, f.book.Id, res.OldBookId)
	assert.Equal(t, f.otherBook.Id, res.NewBookId)

	source := f.reload(t, a.Id)
	assert.Equal(t, entity.AssignmentStatusReassigned, source.Status)
	assert.Equal(t, "book withdrawn", source.ReassignmentReason)
	require.NotNil(t, source.ReassignedBy)
	assert.Equal(t, f.adminId, *source.ReassignedBy)

	created := f.reload(t, res.NewAssignmentId)
	assert.True(t, created.IsReassignment)
	require.NotNil(t, created.OriginalAssignmentId)
	assert.Equal(t, a.Id, *created.OriginalAssignmentId)
	assert.Equal(t, entity.AssignmentStatusWaiting, created.Status)
	assert.Equal(t, f.reader.Id, created.ReaderProfileId)
	assert.Equal(t, entity.BookFormatAudiobook, created.FormatAssigned)
	assert.Equal(t, 2, created.CreditsValue)

	assert.Equal(t, []string{"reassigned"}, f.publisher.events)
}

func TestReassignReaderGuards(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	_, err := f.manager.ReassignReader(f.ctx, f.uow(), f.adminId, a.Id, uuid.New(), "r", "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.manager.ReassignReader(f.ctx, f.uow(), f.adminId, a.Id, f.book.Id, "r", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = f.manager.ReassignReader(f.ctx, f.uow(), f.adminId, a.Id, f.otherBook.Id, "r", "")
	require.NoError(t, err)

	// REASSIGNED is terminal
	_, err = f.manager.ReassignReader(f.ctx, f.uow(), f.adminId, a.Id, f.otherBook.Id, "again", "")
	assert.ErrorIs(t, err, entity.ErrInvalidStatusTransition)
}

func TestBulkReassignReportsEveryItem(t *testing.T) {
	f := newFixture(t)
	first := f.assignment(t, nil)
	cancelled := f.assignment(t, func(a *entity.ReaderAssignment) { a.Status = entity.AssignmentStatusCancelled })
	missing := uuid.New()
	last := f.assignment(t, nil)
	ids := []uuid.UUID{first.Id, cancelled.Id, missing, last.Id}

	res, err := f.manager.BulkReassign(f.ctx, f.uow(), f.adminId, ids, f.otherBook.Id, "rebalance", "")
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	assert.Equal(t, res.TotalProcessed, res.SuccessCount+res.FailureCount)
	require.Len(t, res.Results, 4)
	for i, id := range ids {
		assert.Equal(t, id, res.Results[i].AssignmentId)
	}
	assert.True(t, res.Results[0].Success)
	assert.False(t, res.Results[1].Success)
	assert.Equal(t, "Assignment not found", res.Results[2].Error)
	assert.True(t, res.Results[3].Success)

	actions := f.auditActions(t)
	assert.Equal(t, entity.AuditActionBulkReassigned, actions[0])
	assert.Len(t, actions, 3)
}

func TestBulkReassignValidatesTargetUpFront(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	_, err := f.manager.BulkReassign(f.ctx, f.uow(), f.adminId, []uuid.UUID{a.Id}, uuid.New(), "r", "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, entity.AssignmentStatusInProgress, f.reload(t, a.Id).Status)
	assert.Empty(t, f.auditActions(t))
}

func TestCancelAssignmentRefundsCredits(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, func(a *entity.ReaderAssignment) {
		a.FormatAssigned = entity.BookFormatAudiobook
		a.CreditsValue = 2
	})

	res, err := f.manager.CancelAssignment(f.ctx, f.uow(), f.adminId, a.Id, "reader unresponsive", true, "")
	require.NoError(t, err)
	assert.Equal(t, entity.AssignmentStatusInProgress, res.PreviousStatus)
	assert.Equal(t, entity.AssignmentStatusCancelled, res.NewStatus)
	assert.Equal(t, 2, res.CreditsRefunded)

	book, err := f.uow().BookRepository().FindById(f.ctx, f.book.Id)
	require.NoError(t, err)
	assert.Equal(t, 22, book.CreditsRemaining)

	author, err := f.uow().ProfileRepository().FindAuthorById(f.ctx, f.author.Id)
	require.NoError(t, err)
	assert.Equal(t, 12, author.AvailableCredits)

	stored := f.reload(t, a.Id)
	assert.Equal(t, "reader unresponsive", stored.CancellationReason)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, f.adminId, *stored.CancelledBy)
}

func TestCancelAssignmentWithoutRefundLeavesBalances(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	res, err := f.manager.CancelAssignment(f.ctx, f.uow(), f.adminId, a.Id, "r", false, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.CreditsRefunded)

	book, _ := f.uow().BookRepository().FindById(f.ctx, f.book.Id)
	author, _ := f.uow().ProfileRepository().FindAuthorById(f.ctx, f.author.Id)
	assert.Equal(t, 20, book.CreditsRemaining)
	assert.Equal(t, 10, author.AvailableCredits)
}

func TestCancelAssignmentWithoutAuthorRefundsNothing(t *testing.T) {
	f := newFixture(t)
	orphan := &entity.Book{Title: "Anonymous", Status: entity.BookStatusActive, CreditsRemaining: 3}
	require.NoError(t, f.uow().BookRepository().Create(f.ctx, orphan))
	a := f.assignment(t, func(a *entity.ReaderAssignment) { a.BookId = orphan.Id })

	res, err := f.manager.CancelAssignment(f.ctx, f.uow(), f.adminId, a.Id, "r", true, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.CreditsRefunded)

	book, _ := f.uow().BookRepository().FindById(f.ctx, orphan.Id)
	assert.Equal(t, 3, book.CreditsRemaining)
}

func TestCancelAssignmentRollsBackWhenAuthorUpdateFails(t *testing.T) {
	f := newFixture(t)
	ghost := uuid.New()
	book := &entity.Book{AuthorProfileId: &ghost, Title: "Lost", Status: entity.BookStatusActive, CreditsRemaining: 4}
	require.NoError(t, f.uow().BookRepository().Create(f.ctx, book))
	a := f.assignment(t, func(a *entity.ReaderAssignment) { a.BookId = book.Id })

	_, err := f.manager.CancelAssignment(f.ctx, f.uow(), f.adminId, a.Id, "r", true, "")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	stored, _ := f.uow().BookRepository().FindById(f.ctx, book.Id)
	assert.Equal(t, 4, stored.CreditsRemaining)
	assert.Equal(t, entity.AssignmentStatusInProgress, f.reload(t, a.Id).Status)
	assert.Empty(t, f.auditActions(t))
}

func TestCancelTerminalAssignmentIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, func(a *entity.ReaderAssignment) { a.Status = entity.AssignmentStatusReassigned })

	_, err := f.manager.CancelAssignment(f.ctx, f.uow(), f.adminId, a.Id, "r", true, "")
	assert.ErrorIs(t, err, entity.ErrInvalidStatusTransition)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestWrongFormatCorrectionTogglesAndIsInvertible(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)
	correction, err := ParseCorrection("WRONG_FORMAT", "switch format", "reader asked for audio")
	require.NoError(t, err)

	res, err := f.manager.CorrectAssignmentError(f.ctx, f.uow(), f.adminId, a.Id, correction, "")
	require.NoError(t, err)
	assert.Equal(t, ErrorTypeWrongFormat, res.ErrorType)
	stored := f.reload(t, a.Id)
	assert.Equal(t, entity.BookFormatAudiobook, stored.FormatAssigned)
	assert.Equal(t, 2, stored.CreditsValue)

	_, err = f.manager.CorrectAssignmentError(f.ctx, f.uow(), f.adminId, a.Id, correction, "")
	require.NoError(t, err)
	stored = f.reload(t, a.Id)
	assert.Equal(t, entity.BookFormatEbook, stored.FormatAssigned)
	assert.Equal(t, 1, stored.CreditsValue)

	logs, _, err := f.uow().AuditLogRepository().FindAll(f.ctx, contract.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, entity.AuditSeverityWarning, l.Severity)
	}
}

func TestAdvisoryCorrectionsDoNotMutate(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)

	for _, errorType := range []string{"MISSING_CREDITS", "WRONG_BOOK", "DUPLICATE", "OTHER"} {
		correction, err := ParseCorrection(errorType, "review", "desc")
		require.NoError(t, err)

		res, err := f.manager.CorrectAssignmentError(f.ctx, f.uow(), f.adminId, a.Id, correction, "")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Result)
		if errorType == "MISSING_CREDITS" {
			assert.Contains(t, res.Result, "credit allocation")
		} else {
			assert.Equal(t, "Error logged for manual review", res.Result)
		}
	}

	assert.Equal(t, 1, f.reload(t, a.Id).Version)
	assert.Len(t, f.auditActions(t), 4)
}

func TestParseCorrectionRejectsUnknownType(t *testing.T) {
	_, err := ParseCorrection("TYPO", "a", "b")
	assert.Error(t, err)

	c, err := ParseCorrection(" wrong_book ", "a", "b")
	require.NoError(t, err)
	assert.IsType(t, WrongBookCorrection{}, c)
	assert.Equal(t, "a", c.Action())
	assert.Equal(t, "b", c.Description())
}

func TestClassifyExceptionPriority(t *testing.T) {
	now := fixedNow
	actor := uuid.New()

	assert.Equal(t, ExceptionExpired, ClassifyException(&entity.ReaderAssignment{
		Status: entity.AssignmentStatusExpired, CancelledBy: &actor, DeadlineExtendedAt: &now,
	}))
	assert.Equal(t, ExceptionCancellation, ClassifyException(&entity.ReaderAssignment{
		Status: entity.AssignmentStatusCancelled, CancelledBy: &actor, ReassignedAt: &now, DeadlineExtendedAt: &now,
	}))
	assert.Equal(t, ExceptionReassignment, ClassifyException(&entity.ReaderAssignment{
		Status: entity.AssignmentStatusReassigned, ReassignedAt: &now, DeadlineExtendedAt: &now,
	}))
	assert.Equal(t, ExceptionDeadlineExtension, ClassifyException(&entity.ReaderAssignment{
		Status: entity.AssignmentStatusWaiting, DeadlineExtendedAt: &now,
	}))
}

func TestGetAssignmentExceptionsJoinsDetails(t *testing.T) {
	f := newFixture(t)
	a := f.assignment(t, nil)
	f.assignment(t, nil)

	_, err := f.manager.ExtendDeadline(f.ctx, f.uow(), f.adminId, a.Id, 5, "r", "")
	require.NoError(t, err)

	rows, err := f.manager.GetAssignmentExceptions(f.ctx, f.uow(), &f.book.Id, nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0].Book.Title)
	assert.Equal(t, "Ana", rows[0].ReaderProfile.DisplayName)
	assert.Equal(t, ExceptionDeadlineExtension, ClassifyException(rows[0]))
}
