package mapper

import (
	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"
)

type BookMapper struct {
	profiles *ProfileMapper
}

func NewBookMapper() *BookMapper {
	return &BookMapper{profiles: NewProfileMapper()}
}

func (m *BookMapper) ToEntity(b *model.Book) *entity.Book {
	if b == nil {
		return nil
	}
	return &entity.Book{
		Id:               b.Id,
		AuthorProfileId:  b.AuthorProfileId,
		Title:            b.Title,
		Status:           entity.BookStatus(b.Status),
		CreditsRemaining: b.CreditsRemaining,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		AuthorProfile:    m.profiles.AuthorToEntity(b.AuthorProfile),
	}
}

func (m *BookMapper) ToModel(b *entity.Book) *model.Book {
	return &model.Book{
		Id:               b.Id,
		AuthorProfileId:  b.AuthorProfileId,
		Title:            b.Title,
		Status:           string(b.Status),
		CreditsRemaining: b.CreditsRemaining,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
