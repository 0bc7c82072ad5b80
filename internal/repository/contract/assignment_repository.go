package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

// AssignmentExceptionFilter narrows the exception listing. Nil fields are ignored.
type AssignmentExceptionFilter struct {
	BookId          *uuid.UUID
	ReaderProfileId *uuid.UUID
	Limit           int
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.ReaderAssignment) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error)
	// FindByIdWithDetails joins the book (with its author profile) and the reader (with its user).
	FindByIdWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error)
	// Update writes the row only if its stored version equals assignment.Version,
	// then bumps assignment.Version. Returns entity.ErrVersionConflict otherwise.
	Update(ctx context.Context, assignment *entity.ReaderAssignment) error
	FindExceptions(ctx context.Context, filter AssignmentExceptionFilter) ([]*entity.ReaderAssignment, error)
}
