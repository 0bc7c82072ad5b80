package model

import (
	"time"

	"github.com/google/uuid"
)

type ReaderAssignment struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookId               uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReaderProfileId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OriginalAssignmentId *uuid.UUID `gorm:"type:uuid;index"`
	Status               string     `gorm:"type:varchar(20);not null;default:'WAITING';index"`
	FormatAssigned       string     `gorm:"type:varchar(20);not null"`
	CreditsValue         int        `gorm:"not null;default:1"`
	DeadlineAt           *time.Time
	DeadlineExtendedAt   *time.Time `gorm:"index"`
	ExtensionReason      string     `gorm:"type:text"`
	ReassignedAt         *time.Time `gorm:"index"`
	ReassignedBy         *uuid.UUID `gorm:"type:uuid"`
	ReassignmentReason   string     `gorm:"type:text"`
	CancelledBy          *uuid.UUID `gorm:"type:uuid;index"`
	CancellationReason   string     `gorm:"type:text"`
	IsReassignment       bool       `gorm:"not null;default:false"`
	Version              int        `gorm:"not null;default:1"`
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime;index"`

	Book          *Book          `gorm:"foreignKey:BookId"`
	ReaderProfile *ReaderProfile `gorm:"foreignKey:ReaderProfileId"`
}

func (ReaderAssignment) TableName() string {
	return "reader_assignments"
}
