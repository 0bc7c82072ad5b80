package mapper

import (
	"bookreview-be/internal/entity"
	"bookreview-be/internal/model"

	"github.com/google/uuid"
)

type ProfileMapper struct {
	users *UserMapper
}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{users: NewUserMapper()}
}

func (m *ProfileMapper) ReaderToEntity(p *model.ReaderProfile) *entity.ReaderProfile {
	if p == nil || p.Id == uuid.Nil {
		return nil
	}
	return &entity.ReaderProfile{
		Id:          p.Id,
		UserId:      p.UserId,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		User:        m.users.ToEntity(&p.User),
	}
}

func (m *ProfileMapper) ReaderToModel(p *entity.ReaderProfile) *model.ReaderProfile {
	return &model.ReaderProfile{
		Id:          p.Id,
		UserId:      p.UserId,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m *ProfileMapper) AuthorToEntity(p *model.AuthorProfile) *entity.AuthorProfile {
	if p == nil || p.Id == uuid.Nil {
		return nil
	}
	return &entity.AuthorProfile{
		Id:                    p.Id,
		UserId:                p.UserId,
		PenName:               p.PenName,
		TotalCreditsPurchased: p.TotalCreditsPurchased,
		TotalCreditsUsed:      p.TotalCreditsUsed,
		AvailableCredits:      p.AvailableCredits,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
		User:                  m.users.ToEntity(&p.User),
	}
}

func (m *ProfileMapper) AuthorToModel(p *entity.AuthorProfile) *model.AuthorProfile {
	return &model.AuthorProfile{
		Id:                    p.Id,
		UserId:                p.UserId,
		PenName:               p.PenName,
		TotalCreditsPurchased: p.TotalCreditsPurchased,
		TotalCreditsUsed:      p.TotalCreditsUsed,
		AvailableCredits:      p.AvailableCredits,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
