package implementation

import (
	"context"
	"errors"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/mapper"
	"bookreview-be/internal/model"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func (r *ProfileRepositoryImpl) CreateReader(ctx context.Context, profile *entity.ReaderProfile) error {
	m := r.mapper.ReaderToModel(profile)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	profile.Id = m.Id
	profile.CreatedAt = m.CreatedAt
	profile.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProfileRepositoryImpl) CreateAuthor(ctx context.Context, profile *entity.AuthorProfile) error {
	m := r.mapper.AuthorToModel(profile)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	profile.Id = m.Id
	profile.CreatedAt = m.CreatedAt
	profile.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProfileRepositoryImpl) FindReaderById(ctx context.Context, id uuid.UUID) (*entity.ReaderProfile, error) {
	var m model.ReaderProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReaderToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) FindAuthorById(ctx context.Context, id uuid.UUID) (*entity.AuthorProfile, error) {
	return r.findAuthor(ctx, "id = ?", id)
}

func (r *ProfileRepositoryImpl) FindAuthorByUserId(ctx context.Context, userId uuid.UUID) (*entity.AuthorProfile, error) {
	return r.findAuthor(ctx, "user_id = ?", userId)
}

func (r *ProfileRepositoryImpl) findAuthor(ctx context.Context, where string, arg uuid.UUID) (*entity.AuthorProfile, error) {
	var m model.AuthorProfile
	if err := r.db.WithContext(ctx).Preload("User").Where(where, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AuthorToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) AdjustAvailableCredits(ctx context.Context, authorProfileId uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&model.AuthorProfile{}).
		Where("id = ?", authorProfileId).
		UpdateColumn("available_credits", gorm.Expr("available_credits + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordMissing
	}
	return nil
}
