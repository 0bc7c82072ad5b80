package memory

import (
	"context"
	"sort"
	"time"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.Status == "" {
		user.Status = entity.UserStatusActive
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.store.data.users[user.Id] = *user
	return nil
}

func (r *userRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.users[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *userRepository) FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var users []*entity.User
	for _, row := range r.store.data.users {
		if row.Role == role && row.Status == entity.UserStatusActive {
			u := row
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}
