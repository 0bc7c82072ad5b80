package contract

import (
	"context"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	CreateReader(ctx context.Context, profile *entity.ReaderProfile) error
	CreateAuthor(ctx context.Context, profile *entity.AuthorProfile) error
	FindReaderById(ctx context.Context, id uuid.UUID) (*entity.ReaderProfile, error)
	FindAuthorById(ctx context.Context, id uuid.UUID) (*entity.AuthorProfile, error)
	FindAuthorByUserId(ctx context.Context, userId uuid.UUID) (*entity.AuthorProfile, error)
	AdjustAvailableCredits(ctx context.Context, authorProfileId uuid.UUID, delta int) error
}
