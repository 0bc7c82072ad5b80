package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundRequest struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditPurchaseId uuid.UUID        `gorm:"type:uuid;not null;index"`
	AuthorProfileId  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Reason           string           `gorm:"type:varchar(50);not null"`
	Explanation      string           `gorm:"type:text"`
	Status           string           `gorm:"type:varchar(30);not null;default:'PENDING';index"` // PENDING, APPROVED, PARTIALLY_APPROVED, REJECTED, PROCESSING, COMPLETED
	AdminNotes       string           `gorm:"type:text"`
	RefundAmount     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReviewedBy       *uuid.UUID       `gorm:"type:uuid"`
	ReviewedAt       *time.Time
	StripeRefundId   *string `gorm:"type:varchar(255)"`
	ProcessedAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	// Relations
	CreditPurchase CreditPurchase `gorm:"foreignKey:CreditPurchaseId"`
	AuthorProfile  AuthorProfile  `gorm:"foreignKey:AuthorProfileId"`
}

func (RefundRequest) TableName() string {
	return "refund_requests"
}
