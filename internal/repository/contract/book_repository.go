package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	AdjustCreditsRemaining(ctx context.Context, id uuid.UUID, delta int) error
	// CountRunningCampaigns counts the author's books in ACTIVE or PAUSED status.
	CountRunningCampaigns(ctx context.Context, authorProfileId uuid.UUID) (int64, error)
}
