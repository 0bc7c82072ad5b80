package memory

import (
	"context"
	"time"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/repository/contract"

	"github.com/google/uuid"
)

type bookRepository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	defer r.store.lockWrite(r.uow.inTx())()

	if book.Id == uuid.Nil {
		book.Id = uuid.New()
	}
	now := time.Now()
	book.CreatedAt, book.UpdatedAt = now, now

	row := *book
	row.AuthorProfile = nil
	r.store.data.books[row.Id] = row
	return nil
}

func (r *bookRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.data.books[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *bookRepository) AdjustCreditsRemaining(ctx context.Context, id uuid.UUID, delta int) error {
	defer r.store.lockWrite(r.uow.inTx())()

	row, ok := r.store.data.books[id]
	if !ok {
		return contract.ErrRecordMissing
	}
	row.CreditsRemaining += delta
	row.UpdatedAt = time.Now()
	r.store.data.books[id] = row
	return nil
}

func (r *bookRepository) CountRunningCampaigns(ctx context.Context, authorProfileId uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, row := range r.store.data.books {
		if row.AuthorProfileId != nil && *row.AuthorProfileId == authorProfileId && row.Status.IsRunningCampaign() {
			count++
		}
	}
	return count, nil
}
