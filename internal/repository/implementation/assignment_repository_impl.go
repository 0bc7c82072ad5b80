package implementation

import (
	"context"
	"errors"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/mapper"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository/contract"
	"bookreview-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssignmentMapper
}

func NewAssignmentRepository(db *gorm.DB) contract.AssignmentRepository {
	return &AssignmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssignmentMapper(),
	}
}

func (r *AssignmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AssignmentRepositoryImpl) Create(ctx context.Context, assignment *entity.ReaderAssignment) error {
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	m := r.mapper.ToModel(assignment)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*assignment = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssignmentRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.ReaderAssignment, error) {
	var m model.ReaderAssignment
	if err := r.applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssignmentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *AssignmentRepositoryImpl) FindByIdWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReaderAssignment, error) {
	return r.findOne(ctx, specification.WithAssignmentDetails{}, specification.ByID{ID: id})
}

func (r *AssignmentRepositoryImpl) Update(ctx context.Context, assignment *entity.ReaderAssignment) error {
	now := time.Now()
	nextVersion := assignment.Version + 1

	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.ReaderAssignment{}),
		specification.ByID{ID: assignment.Id},
		specification.ByVersion{Version: assignment.Version},
	)
	result := query.Updates(map[string]interface{}{
		"book_id":                assignment.BookId,
		"reader_profile_id":      assignment.ReaderProfileId,
		"original_assignment_id": assignment.OriginalAssignmentId,
		"status":                 string(assignment.Status),
		"format_assigned":        string(assignment.FormatAssigned),
		"credits_value":          assignment.CreditsValue,
		"deadline_at":            assignment.DeadlineAt,
		"deadline_extended_at":   assignment.DeadlineExtendedAt,
		"extension_reason":       assignment.ExtensionReason,
		"reassigned_at":          assignment.ReassignedAt,
		"reassigned_by":          assignment.ReassignedBy,
		"reassignment_reason":    assignment.ReassignmentReason,
		"cancelled_by":           assignment.CancelledBy,
		"cancellation_reason":    assignment.CancellationReason,
		"is_reassignment":        assignment.IsReassignment,
		"version":                nextVersion,
		"updated_at":             now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrVersionConflict
	}

	assignment.Version = nextVersion
	assignment.UpdatedAt = now
	return nil
}

func (r *AssignmentRepositoryImpl) FindExceptions(ctx context.Context, filter contract.AssignmentExceptionFilter) ([]*entity.ReaderAssignment, error) {
	specs := []specification.Specification{
		specification.WithAssignmentDetails{},
		specification.HasExceptionMarker{},
	}
	if filter.BookId != nil {
		specs = append(specs, specification.Filter("book_id", *filter.BookId))
	}
	if filter.ReaderProfileId != nil {
		specs = append(specs, specification.Filter("reader_profile_id", *filter.ReaderProfileId))
	}
	specs = append(specs,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: filter.Limit},
	)

	var rows []*model.ReaderAssignment
	if err := r.applySpecifications(r.db.WithContext(ctx), specs...).Find(&rows).Error; err != nil {
		return nil, err
	}

	assignments := make([]*entity.ReaderAssignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, r.mapper.ToEntity(row))
	}
	return assignments, nil
}
