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
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var modelUser model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&modelUser), nil
}

func (r *UserRepositoryImpl) FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.User, error) {
	var modelUsers []*model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", string(role), string(entity.UserStatusActive)).
		Order("created_at ASC").
		Find(&modelUsers).Error
	if err != nil {
		return nil, err
	}

	users := make([]*entity.User, 0, len(modelUsers))
	for _, u := range modelUsers {
		users = append(users, r.mapper.ToEntity(u))
	}
	return users, nil
}
