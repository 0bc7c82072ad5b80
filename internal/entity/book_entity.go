package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookStatus string

const (
	BookStatusDraft     BookStatus = "DRAFT"
	BookStatusPending   BookStatus = "PENDING"
	BookStatusActive    BookStatus = "ACTIVE"
	BookStatusPaused    BookStatus = "PAUSED"
	BookStatusCompleted BookStatus = "COMPLETED"
	BookStatusArchived  BookStatus = "ARCHIVED"
)

// IsRunningCampaign is true while readers can still be assigned to the book.
func (s BookStatus) IsRunningCampaign() bool {
	return s == BookStatusActive || s == BookStatusPaused
}

type Book struct {
	Id               uuid.UUID
	AuthorProfileId  *uuid.UUID
	Title            string
	Status           BookStatus
	CreditsRemaining int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	AuthorProfile *AuthorProfile
}
