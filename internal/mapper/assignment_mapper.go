package mapper

import (
	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"
)

type AssignmentMapper struct {
	books    *BookMapper
	profiles *ProfileMapper
}

func NewAssignmentMapper() *AssignmentMapper {
	return &AssignmentMapper{
		books:    NewBookMapper(),
		profiles: NewProfileMapper(),
	}
}

func (m *AssignmentMapper) ToEntity(a *model.ReaderAssignment) *entity.ReaderAssignment {
	if a == nil {
		return nil
	}
	return &entity.ReaderAssignment{
		Id:                   a.Id,
		BookId:               a.BookId,
		ReaderProfileId:      a.ReaderProfileId,
		OriginalAssignmentId: a.OriginalAssignmentId,
		Status:               entity.AssignmentStatus(a.Status),
		FormatAssigned:       entity.BookFormat(a.FormatAssigned),
		CreditsValue:         a.CreditsValue,
		DeadlineAt:           a.DeadlineAt,
		DeadlineExtendedAt:   a.DeadlineExtendedAt,
		ExtensionReason:      a.ExtensionReason,
		ReassignedAt:         a.ReassignedAt,
		ReassignedBy:         a.ReassignedBy,
		ReassignmentReason:   a.ReassignmentReason,
		CancelledBy:          a.CancelledBy,
		CancellationReason:   a.CancellationReason,
		IsReassignment:       a.IsReassignment,
		Version:              a.Version,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
		Book:                 m.books.ToEntity(a.Book),
		ReaderProfile:        m.profiles.ReaderToEntity(a.ReaderProfile),
	}
}

func (m *AssignmentMapper) ToModel(a *entity.ReaderAssignment) *model.ReaderAssignment {
	return &model.ReaderAssignment{
		Id:                   a.Id,
		BookId:               a.BookId,
		ReaderProfileId:      a.ReaderProfileId,
		OriginalAssignmentId: a.OriginalAssignmentId,
		Status:               string(a.Status),
		FormatAssigned:       string(a.FormatAssigned),
		CreditsValue:         a.CreditsValue,
		DeadlineAt:           a.DeadlineAt,
		DeadlineExtendedAt:   a.DeadlineExtendedAt,
		ExtensionReason:      a.ExtensionReason,
		ReassignedAt:         a.ReassignedAt,
		ReassignedBy:         a.ReassignedBy,
		ReassignmentReason:   a.ReassignmentReason,
		CancelledBy:          a.CancelledBy,
		CancellationReason:   a.CancellationReason,
		IsReassignment:       a.IsReassignment,
		Version:              a.Version,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
