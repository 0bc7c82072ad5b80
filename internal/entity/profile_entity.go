package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReaderProfile struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User *User
}

type AuthorProfile struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	PenName               string
	TotalCreditsPurchased int
	TotalCreditsUsed      int
	AvailableCredits      int
	CreatedAt             time.Time
	UpdatedAt             time.Time

	User *User
}
