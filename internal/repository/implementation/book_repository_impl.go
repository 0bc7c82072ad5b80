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

type BookRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookMapper
}

func NewBookRepository(db *gorm.DB) contract.BookRepository {
	return &BookRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookMapper(),
	}
}

func (r *BookRepositoryImpl) Create(ctx context.Context, book *entity.Book) error {
	m := r.mapper.ToModel(book)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*book = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	var m model.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookRepositoryImpl) AdjustCreditsRemaining(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", id).
		UpdateColumn("credits_remaining", gorm.Expr("credits_remaining + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordMissing
	}
	return nil
}

func (r *BookRepositoryImpl) CountRunningCampaigns(ctx context.Context, authorProfileId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("author_profile_id = ? AND status IN ?", authorProfileId,
			[]string{string(entity.BookStatusActive), string(entity.BookStatusPaused)}).
		Count(&count).Error
	return count, err
}
