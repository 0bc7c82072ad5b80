package model

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AuthorProfileId  *uuid.UUID `gorm:"type:uuid;index"`
	Title            string     `gorm:"type:varchar(500);not null"`
	Status           string     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CreditsRemaining int        `gorm:"not null;default:0"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`

	AuthorProfile *AuthorProfile `gorm:"foreignKey:AuthorProfileId"`
}

func (Book) TableName() string {
	return "books"
}
