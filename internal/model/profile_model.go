package model

import (
	"time"

	"github.com/google/uuid"
)

type ReaderProfile struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName string    `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserId"`
}

func (ReaderProfile) TableName() string {
	return "reader_profiles"
}

type AuthorProfile struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PenName               string    `gorm:"type:varchar(255)"`
	TotalCreditsPurchased int       `gorm:"not null;default:0"`
	TotalCreditsUsed      int       `gorm:"not null;default:0"`
	AvailableCredits      int       `gorm:"not null;default:0"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserId"`
}

func (AuthorProfile) TableName() string {
	return "author_profiles"
}
