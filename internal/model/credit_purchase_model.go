package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditPurchase struct {
	Id              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AuthorProfileId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Credits         int             `gorm:"not null"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'usd'"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	StripePaymentId *string         `gorm:"type:varchar(255)"`
	PurchaseDate    time.Time       `gorm:"not null"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`

	AuthorProfile AuthorProfile `gorm:"foreignKey:AuthorProfileId"`
}

func (CreditPurchase) TableName() string {
	return "credit_purchases"
}
