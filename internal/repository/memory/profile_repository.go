package memory

import (
	"context"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
)

type profileRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *profileRepository) CreateReader(ctx context.Context, profile *entity.ReaderProfile) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if profile.Id == uuid.Nil {
		profile.Id = uuid.New()
	}
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now

	row := *profile
	row.User = nil
	r.store.data.readers[row.Id] = row
	return nil
}

func (r *profileRepository) CreateAuthor(ctx context.Context, profile *entity.AuthorProfile) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if profile.Id == uuid.Nil {
		profile.Id = uuid.New()
	}
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now

	row := *profile
	row.User = nil
	r.store.data.authors[row.Id] = row
	return nil
}

func (r *profileRepository) FindReaderById(ctx context.Context, id uuid.UUID) (*entity.ReaderProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.readers[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.readerDetails(row), nil
}

func (r *profileRepository) FindAuthorById(ctx context.Context, id uuid.UUID) (*entity.AuthorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.authors[id]
	if !ok {
		return nil, nil
	}
	return r.store.data.authorDetails(row), nil
}

func (r *profileRepository) FindAuthorByUserId(ctx context.Context, userId uuid.UUID) (*entity.AuthorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, row := range r.store.data.authors {
		if row.UserId == userId {
			return r.store.data.authorDetails(row), nil
		}
	}
	return nil, nil
}

func (r *profileRepository) AdjustAvailableCredits(ctx context.Context, authorProfileId uuid.UUID, delta int) error {
	defer r.store.lockWrite(r.uow.inTx())()

	row, ok := r.store.data.authors[authorProfileId]
	if !ok {
		return contract.ErrRecordMissing
	}
	row.AvailableCredits += delta
	row.UpdatedAt = time.Now()
	r.store.data.authors[authorProfileId] = row
	return nil
}
