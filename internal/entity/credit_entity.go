package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type CreditPurchase struct {
	Id              uuid.UUID
	AuthorProfileId uuid.UUID
	Credits         int
	AmountPaid      decimal.Decimal
	Currency        string
	PaymentStatus   PaymentStatus
	StripePaymentId *string
	PurchaseDate    time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
