package service

import (
	"context"

	"bookreview-be/internal/dto"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/pkg/admin/assignment"
	"bookreview-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type IAssignmentExceptionService interface {
	ExtendDeadline(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ExtendDeadlineRequest) (*dto.DeadlineChangeResponse, error)
	ShortenDeadline(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ShortenDeadlineRequest) (*dto.DeadlineChangeResponse, error)
	ReassignReader(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ReassignReaderRequest) (*dto.ReassignReaderResponse, error)
	BulkReassign(ctx context.Context, actorId uuid.UUID, req dto.BulkReassignRequest) (*dto.BulkReassignResponse, error)
	CancelAssignment(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.CancelAssignmentRequest) (*dto.CancelAssignmentResponse, error)
	CorrectAssignmentError(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.CorrectAssignmentErrorRequest) (*dto.CorrectAssignmentErrorResponse, error)
	GetAssignmentExceptions(ctx context.Context, bookId, readerProfileId *uuid.UUID, limit int) ([]*dto.AssignmentExceptionResponse, error)
}

type assignmentExceptionService struct {
	uowFactory unitofwork.RepositoryFactory
	manager    *assignment.Manager
}

func NewAssignmentExceptionService(uowFactory unitofwork.RepositoryFactory, manager *assignment.Manager) IAssignmentExceptionService {
	return &assignmentExceptionService{
		uowFactory: uowFactory,
		manager:    manager,
	}
}

func (s *assignmentExceptionService) ExtendDeadline(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ExtendDeadlineRequest) (*dto.DeadlineChangeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.ExtendDeadline(ctx, uow, actorId, assignmentId, req.ExtensionHours, req.Reason, req.Notes)
	if err != nil {
		return nil, err
	}
	return mapper.DeadlineResultToResponse(result, false), nil
}

func (s *assignmentExceptionService) ShortenDeadline(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ShortenDeadlineRequest) (*dto.DeadlineChangeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.ShortenDeadline(ctx, uow, actorId, assignmentId, req.ReductionHours, req.Reason, req.Notes)
	if err != nil {
		return nil, err
	}
	return mapper.DeadlineResultToResponse(result, true), nil
}

func (s *assignmentExceptionService) ReassignReader(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.ReassignReaderRequest) (*dto.ReassignReaderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.ReassignReader(ctx, uow, actorId, assignmentId, req.TargetBookId, req.Reason, req.Notes)
	if err != nil {
		return nil, err
	}
	return &dto.ReassignReaderResponse{
		OldAssignmentId: result.OldAssignmentId,
		NewAssignmentId: result.NewAssignmentId,
		OldBookId:       result.OldBookId,
		NewBookId:       result.NewBookId,
		Reason:          result.Reason,
	}, nil
}

func (s *assignmentExceptionService) BulkReassign(ctx context.Context, actorId uuid.UUID, req dto.BulkReassignRequest) (*dto.BulkReassignResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.BulkReassign(ctx, uow, actorId, req.AssignmentIds, req.TargetBookId, req.Reason, req.Notes)
	if err != nil {
		return nil, err
	}
	return mapper.BulkResultToResponse(result), nil
}

func (s *assignmentExceptionService) CancelAssignment(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.CancelAssignmentRequest) (*dto.CancelAssignmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.CancelAssignment(ctx, uow, actorId, assignmentId, req.Reason, req.RefundCredits, req.Notes)
	if err != nil {
		return nil, err
	}
	return &dto.CancelAssignmentResponse{
		AssignmentId:    result.AssignmentId,
		PreviousStatus:  string(result.PreviousStatus),
		NewStatus:       string(result.NewStatus),
		Reason:          result.Reason,
		CreditsRefunded: result.CreditsRefunded,
	}, nil
}

func (s *assignmentExceptionService) CorrectAssignmentError(ctx context.Context, actorId, assignmentId uuid.UUID, req dto.CorrectAssignmentErrorRequest) (*dto.CorrectAssignmentErrorResponse, error) {
	correction, err := assignment.ParseCorrection(req.ErrorType, req.CorrectionAction, req.Description)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	result, err := s.manager.CorrectAssignmentError(ctx, uow, actorId, assignmentId, correction, req.Notes)
	if err != nil {
		return nil, err
	}
	return &dto.CorrectAssignmentErrorResponse{
		AssignmentId:     result.AssignmentId,
		ErrorType:        string(result.ErrorType),
		CorrectionAction: result.CorrectionAction,
		Description:      result.Description,
		Result:           result.Result,
	}, nil
}

func (s *assignmentExceptionService) GetAssignmentExceptions(ctx context.Context, bookId, readerProfileId *uuid.UUID, limit int) ([]*dto.AssignmentExceptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := s.manager.GetAssignmentExceptions(ctx, uow, bookId, readerProfileId, limit)
	if err != nil {
		return nil, err
	}
	return mapper.AssignmentsToExceptionResponse(rows), nil
}
