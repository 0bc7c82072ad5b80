package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/pkg/admin/audit"
	adminEvents "bookreview-be/pkg/admin/events"

	"github.com/google/uuid"
)

const (
	DefaultExceptionLimit = 50
	auditEntityType       = "assignment"
)

type ExceptionType string

const (
	ExceptionExpired           ExceptionType = "EXPIRED"
	ExceptionCancellation      ExceptionType = "CANCELLATION"
	ExceptionReassignment      ExceptionType = "REASSIGNMENT"
	ExceptionDeadlineExtension ExceptionType = "DEADLINE_EXTENSION"
)

type DeadlineResult struct {
	AssignmentId uuid.UUID
	OldDeadline  time.Time
	NewDeadline  time.Time
	Hours        int
	Reason       string
}

type ReassignResult struct {
	OldAssignmentId uuid.UUID
	NewAssignmentId uuid.UUID
	OldBookId       uuid.UUID
	NewBookId       uuid.UUID
	Reason          string
}

type BulkItemResult struct {
	AssignmentId uuid.UUID
	Success      bool
	Error        string
}

type BulkResult struct {
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
	Results        []BulkItemResult
}

type CancelResult struct {
	AssignmentId    uuid.UUID
	PreviousStatus  entity.AssignmentStatus
	NewStatus       entity.AssignmentStatus
	Reason          string
	CreditsRefunded int
}

type CorrectionResult struct {
	AssignmentId     uuid.UUID
	ErrorType        ErrorType
	CorrectionAction string
	Description      string
	Result           string
}

// Manager applies administrator corrections to reader assignments.
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	mailer    mailer.Sender
	now       func() time.Time
}

func NewManager(logger logger.ILogger, publisher adminEvents.Publisher, sender mailer.Sender) *Manager {
	return &Manager{
		logger:    logger,
		publisher: publisher,
		mailer:    sender,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// MaxDeadlineChangeHours bounds a single extension or reduction to one year.
const MaxDeadlineChangeHours = 24 * 365

// ExtendDeadline pushes the deadline back by hours.
func (m *Manager) ExtendDeadline(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId uuid.UUID, hours int, reason, notes string) (*DeadlineResult, error) {
	if hours < 1 {
		return nil, apperror.BadRequest("Extension must be at least 1 hour")
	}
	if hours > MaxDeadlineChangeHours {
		return nil, apperror.BadRequest("Extension cannot exceed %d hours", MaxDeadlineChangeHours)
	}
	return m.moveDeadline(ctx, uow, actorId, assignmentId, hours, reason, notes)
}

// ShortenDeadline pulls the deadline forward by hours. The result must stay strictly in the future.
func (m *Manager) ShortenDeadline(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId uuid.UUID, hours int, reason, notes string) (*DeadlineResult, error) {
	if hours < 1 {
		return nil, apperror.BadRequest("Reduction must be at least 1 hour")
	}
	if hours > MaxDeadlineChangeHours {
		return nil, apperror.BadRequest("Reduction cannot exceed %d hours", MaxDeadlineChangeHours)
	}
	return m.moveDeadline(ctx, uow, actorId, assignmentId, -hours, reason, notes)
}

func (m *Manager) moveDeadline(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId uuid.UUID, deltaHours int, reason, notes string) (*DeadlineResult, error) {
	a, err := m.load(ctx, uow, assignmentId)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, terminalError(a)
	}
	if a.DeadlineAt == nil {
		return nil, apperror.BadRequest("Assignment has no deadline set")
	}

	now := m.now()
	oldDeadline := *a.DeadlineAt
	newDeadline := oldDeadline.Add(time.Duration(deltaHours) * time.Hour)
	if (deltaHours > 0) != newDeadline.After(oldDeadline) {
		return nil, apperror.BadRequest("Deadline change of %d hours is out of range", deltaHours)
	}
	if deltaHours < 0 && !newDeadline.After(now) {
		return nil, apperror.BadRequest("Shortened deadline must be in the future")
	}

	a.DeadlineAt = &newDeadline
	a.DeadlineExtendedAt = &now
	a.ExtensionReason = reason

	action, hours := entity.AuditActionDeadlineExtended, deltaHours
	if deltaHours < 0 {
		action, hours = entity.AuditActionDeadlineShortened, -deltaHours
	}

	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := updateAssignment(ctx, tx, a); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    actorId,
			Action:     action,
			EntityType: auditEntityType,
			EntityId:   a.Id.String(),
			Details: map[string]interface{}{
				"oldDeadline": oldDeadline,
				"newDeadline": newDeadline,
				"hours":       hours,
				"reason":      reason,
				"notes":       notes,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("ASSIGNMENT", "Changed assignment deadline", map[string]interface{}{
		"assignmentId": a.Id.String(),
		"deltaHours":   deltaHours,
		"actorId":      actorId.String(),
	})

	title := bookTitle(a.Book)
	m.notifyReader(ctx, a, func(to, name string) mailer.Message {
		return mailer.DeadlineChanged(to, name, title, newDeadline, deltaHours)
	})
	if userId, ok := readerUserId(a); ok {
		m.publisher.PublishDeadlineChanged(ctx, actorId, a.Id, userId, title, newDeadline, deltaHours)
	}

	return &DeadlineResult{
		AssignmentId: a.Id,
		OldDeadline:  oldDeadline,
		NewDeadline:  newDeadline,
		Hours:        hours,
		Reason:       reason,
	}, nil
}

// ReassignReader closes the assignment as REASSIGNED and opens a WAITING one on the target book.
func (m *Manager) ReassignReader(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId, targetBookId uuid.UUID, reason, notes string) (*ReassignResult, error) {
	source, err := m.load(ctx, uow, assignmentId)
	if err != nil {
		return nil, err
	}
	target, err := m.loadBook(ctx, uow, targetBookId)
	if err != nil {
		return nil, err
	}
	if target.Id == source.BookId {
		return nil, apperror.BadRequest("Assignment is already for this book")
	}
	if !source.Status.CanTransitionTo(entity.AssignmentStatusReassigned) {
		return nil, terminalError(source)
	}

	now := m.now()
	source.Status = entity.AssignmentStatusReassigned
	source.ReassignedAt = &now
	source.ReassignedBy = &actorId
	source.ReassignmentReason = reason

	originalId := source.Id
	replacement := &entity.ReaderAssignment{
		BookId:               target.Id,
		ReaderProfileId:      source.ReaderProfileId,
		OriginalAssignmentId: &originalId,
		Status:               entity.AssignmentStatusWaiting,
		FormatAssigned:       source.FormatAssigned,
		CreditsValue:         source.CreditsValue,
		IsReassignment:       true,
	}

	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := updateAssignment(ctx, tx, source); err != nil {
			return err
		}
		if err := tx.AssignmentRepository().Create(ctx, replacement); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    actorId,
			Action:     entity.AuditActionReaderReassigned,
			EntityType: auditEntityType,
			EntityId:   source.Id.String(),
			Details: map[string]interface{}{
				"oldAssignmentId": source.Id,
				"newAssignmentId": replacement.Id,
				"oldBookId":       source.BookId,
				"newBookId":       target.Id,
				"reason":          reason,
				"notes":           notes,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("ASSIGNMENT", "Reassigned reader", map[string]interface{}{
		"oldAssignmentId": source.Id.String(),
		"newAssignmentId": replacement.Id.String(),
		"targetBookId":    target.Id.String(),
	})

	oldTitle := bookTitle(source.Book)
	m.notifyReader(ctx, source, func(to, name string) mailer.Message {
		return mailer.ReaderReassigned(to, name, oldTitle, target.Title)
	})
	if userId, ok := readerUserId(source); ok {
		m.publisher.PublishReaderReassigned(ctx, actorId, source.Id, replacement.Id, userId, oldTitle, target.Title)
	}

	return &ReassignResult{
		OldAssignmentId: source.Id,
		NewAssignmentId: replacement.Id,
		OldBookId:       source.BookId,
		NewBookId:       target.Id,
		Reason:          reason,
	}, nil
}

// BulkReassign reassigns each id in order. A failing item is reported and does not stop the batch.
func (m *Manager) BulkReassign(ctx context.Context, uow unitofwork.UnitOfWork, actorId uuid.UUID, assignmentIds []uuid.UUID, targetBookId uuid.UUID, reason, notes string) (*BulkResult, error) {
	if _, err := m.loadBook(ctx, uow, targetBookId); err != nil {
		return nil, err
	}

	result := &BulkResult{Results: make([]BulkItemResult, 0, len(assignmentIds))}
	for _, id := range assignmentIds {
		item := BulkItemResult{AssignmentId: id, Success: true}
		if _, err := m.ReassignReader(ctx, uow, actorId, id, targetBookId, reason, notes); err != nil {
			item.Success = false
			item.Error = apperror.MessageOf(err)
			result.FailureCount++
		} else {
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}
	result.TotalProcessed = len(assignmentIds)

	err := unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    actorId,
			Action:     entity.AuditActionBulkReassigned,
			EntityType: "book",
			EntityId:   targetBookId.String(),
			Details: map[string]interface{}{
				"totalProcessed": result.TotalProcessed,
				"successCount":   result.SuccessCount,
				"failureCount":   result.FailureCount,
				"reason":         reason,
				"notes":          notes,
			},
		})
	})
	if err != nil {
		// Every item already committed on its own
		m.logger.Error("ASSIGNMENT", "Failed to audit bulk reassignment", map[string]interface{}{"error": err.Error()})
	}

	m.logger.Info("ASSIGNMENT", "Bulk reassignment finished", map[string]interface{}{
		"targetBookId": targetBookId.String(),
		"success":      result.SuccessCount,
		"failure":      result.FailureCount,
	})
	return result, nil
}

// CancelAssignment cancels and optionally returns the credits to both the book and its author in one transaction.
func (m *Manager) CancelAssignment(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId uuid.UUID, reason string, refundCredits bool, notes string) (*CancelResult, error) {
	a, err := m.load(ctx, uow, assignmentId)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(entity.AssignmentStatusCancelled) {
		return nil, terminalError(a)
	}

	previous := a.Status
	a.Status = entity.AssignmentStatusCancelled
	a.CancelledBy = &actorId
	a.CancellationReason = reason

	creditsRefunded := 0
	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if err := updateAssignment(ctx, tx, a); err != nil {
			return err
		}
		if refundCredits && a.Book != nil && a.Book.AuthorProfileId != nil {
			if err := tx.BookRepository().AdjustCreditsRemaining(ctx, a.BookId, a.CreditsValue); err != nil {
				return err
			}
			if err := tx.ProfileRepository().AdjustAvailableCredits(ctx, *a.Book.AuthorProfileId, a.CreditsValue); err != nil {
				return err
			}
			creditsRefunded = a.CreditsValue
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    actorId,
			Action:     entity.AuditActionAssignmentCancelled,
			EntityType: auditEntityType,
			EntityId:   a.Id.String(),
			Details: map[string]interface{}{
				"previousStatus":  previous,
				"reason":          reason,
				"refundCredits":   refundCredits,
				"creditsRefunded": creditsRefunded,
				"notes":           notes,
			},
		})
	})
	if err != nil {
		if errors.Is(err, contract.ErrRecordMissing) {
			return nil, apperror.Wrap(apperror.KindNotFound, err, "Book or author profile for this assignment no longer exists")
		}
		return nil, err
	}

	m.logger.Info("ASSIGNMENT", "Cancelled assignment", map[string]interface{}{
		"assignmentId":    a.Id.String(),
		"previousStatus":  string(previous),
		"creditsRefunded": creditsRefunded,
	})

	title := bookTitle(a.Book)
	m.notifyReader(ctx, a, func(to, name string) mailer.Message {
		return mailer.AssignmentCancelled(to, name, title, reason)
	})
	if userId, ok := readerUserId(a); ok {
		m.publisher.PublishAssignmentCancelled(ctx, actorId, a.Id, userId, title, reason)
	}

	return &CancelResult{
		AssignmentId:    a.Id,
		PreviousStatus:  previous,
		NewStatus:       a.Status,
		Reason:          reason,
		CreditsRefunded: creditsRefunded,
	}, nil
}

// CorrectAssignmentError applies the correction variant and always leaves a WARNING audit record.
func (m *Manager) CorrectAssignmentError(ctx context.Context, uow unitofwork.UnitOfWork, actorId, assignmentId uuid.UUID, correction Correction, notes string) (*CorrectionResult, error) {
	a, err := m.load(ctx, uow, assignmentId)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, terminalError(a)
	}

	var result string
	mutated := false
	switch correction.(type) {
	case WrongFormatCorrection:
		from := a.FormatAssigned
		a.FormatAssigned = from.Toggle()
		a.CreditsValue = entity.CreditsForFormat(a.FormatAssigned)
		mutated = true
		result = fmt.Sprintf("Format changed from %s to %s, credits value is now %d", from, a.FormatAssigned, a.CreditsValue)
	case MissingCreditsCorrection:
		result = "No change applied. Use the credit allocation flow to grant the missing credits"
	case WrongBookCorrection, DuplicateCorrection, OtherCorrection:
		result = "Error logged for manual review"
	default:
		return nil, apperror.BadRequest("Unsupported error type")
	}

	err = unitofwork.RunInTx(ctx, uow, func(tx unitofwork.UnitOfWork) error {
		if mutated {
			if err := updateAssignment(ctx, tx, a); err != nil {
				return err
			}
		}
		return audit.Record(ctx, tx, audit.Entry{
			ActorId:    actorId,
			Action:     entity.AuditActionAssignmentCorrected,
			Severity:   entity.AuditSeverityWarning,
			EntityType: auditEntityType,
			EntityId:   a.Id.String(),
			Details: map[string]interface{}{
				"errorType":        correction.Type(),
				"correctionAction": correction.Action(),
				"description":      correction.Description(),
				"result":           result,
				"notes":            notes,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.Warn("ASSIGNMENT", "Corrected assignment error", map[string]interface{}{
		"assignmentId": a.Id.String(),
		"errorType":    string(correction.Type()),
		"mutated":      mutated,
	})

	return &CorrectionResult{
		AssignmentId:     a.Id,
		ErrorType:        correction.Type(),
		CorrectionAction: correction.Action(),
		Description:      correction.Description(),
		Result:           result,
	}, nil
}

// GetAssignmentExceptions lists assignments carrying a correction marker, newest first.
func (m *Manager) GetAssignmentExceptions(ctx context.Context, uow unitofwork.UnitOfWork, bookId, readerProfileId *uuid.UUID, limit int) ([]*entity.ReaderAssignment, error) {
	if limit <= 0 {
		limit = DefaultExceptionLimit
	}
	return uow.AssignmentRepository().FindExceptions(ctx, contract.AssignmentExceptionFilter{
		BookId:          bookId,
		ReaderProfileId: readerProfileId,
		Limit:           limit,
	})
}

// ClassifyException picks the single label shown for an exception row; the first match wins.
func ClassifyException(a *entity.ReaderAssignment) ExceptionType {
	switch {
	case a.Status == entity.AssignmentStatusExpired:
		return ExceptionExpired
	case a.CancelledBy != nil:
		return ExceptionCancellation
	case a.ReassignedAt != nil:
		return ExceptionReassignment
	case a.DeadlineExtendedAt != nil:
		return ExceptionDeadlineExtension
	default:
		return ""
	}
}

func (m *Manager) load(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.ReaderAssignment, error) {
	a, err := uow.AssignmentRepository().FindByIdWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.NotFound("Assignment not found")
	}
	return a, nil
}

func (m *Manager) loadBook(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Book, error) {
	book, err := uow.BookRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperror.NotFound("Target book not found")
	}
	return book, nil
}

func updateAssignment(ctx context.Context, uow unitofwork.UnitOfWork, a *entity.ReaderAssignment) error {
	if err := uow.AssignmentRepository().Update(ctx, a); err != nil {
		if errors.Is(err, entity.ErrVersionConflict) {
			return apperror.Wrap(apperror.KindConflict, err, "Assignment was modified by someone else, reload and try again")
		}
		return err
	}
	return nil
}

func terminalError(a *entity.ReaderAssignment) error {
	return apperror.Wrap(apperror.KindBadRequest, entity.ErrInvalidStatusTransition,
		fmt.Sprintf("Assignment is %s and can no longer be changed", a.Status))
}

// notifyReader emails the reader. Failures are logged and never returned.
func (m *Manager) notifyReader(ctx context.Context, a *entity.ReaderAssignment, build func(to, name string) mailer.Message) {
	if a.ReaderProfile == nil || a.ReaderProfile.User == nil || a.ReaderProfile.User.Email == "" {
		m.logger.Warn("ASSIGNMENT", "Reader has no email, skipping notification", map[string]interface{}{"assignmentId": a.Id.String()})
		return
	}

	name := a.ReaderProfile.DisplayName
	if name == "" {
		name = a.ReaderProfile.User.FullName
	}
	if err := m.mailer.Send(ctx, build(a.ReaderProfile.User.Email, name)); err != nil {
		m.logger.Warn("ASSIGNMENT", "Failed to send reader notification", map[string]interface{}{
			"assignmentId": a.Id.String(),
			"error":        err.Error(),
		})
	}
}

func readerUserId(a *entity.ReaderAssignment) (uuid.UUID, bool) {
	if a.ReaderProfile == nil {
		return uuid.Nil, false
	}
	return a.ReaderProfile.UserId, true
}

func bookTitle(b *entity.Book) string {
	if b == nil {
		return "your book"
	}
	return b.Title
}
