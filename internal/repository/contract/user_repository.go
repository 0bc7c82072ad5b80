package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.User, error)
}
