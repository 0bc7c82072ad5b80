package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundEligibilityResponse struct {
	CreditPurchaseId  uuid.UUID       `json:"creditPurchaseId"`
	IsEligible        bool            `json:"isEligible"`
	Reason            string          `json:"reason,omitempty"`
	DaysSincePurchase int             `json:"daysSincePurchase"`
	DaysRemaining     int             `json:"daysRemaining"`
	Credits           int             `json:"credits"`
	CreditsUsed       int             `json:"creditsUsed"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	Currency          string          `json:"currency"`
	ExistingRequestId *uuid.UUID      `json:"existingRequestId,omitempty"`
}

// --- Author side ---

type CreateRefundRequest struct {
	CreditPurchaseId uuid.UUID `json:"creditPurchaseId" validate:"required"`
	Reason           string    `json:"reason" validate:"required,oneof=CHANGED_MIND ACCIDENTAL_PURCHASE SERVICE_ISSUE DUPLICATE_PURCHASE OTHER"`
	Explanation      string    `json:"explanation,omitempty" validate:"max=2000"`
}

type RefundRequestResponse struct {
	Id               uuid.UUID                  `json:"id"`
	CreditPurchaseId uuid.UUID                  `json:"creditPurchaseId"`
	Reason           string                     `json:"reason"`
	Explanation      string                     `json:"explanation,omitempty"`
	Status           string                     `json:"status"`
	AdminNotes       string                     `json:"adminNotes,omitempty"`
	RefundAmount     *decimal.Decimal           `json:"refundAmount,omitempty"`
	StripeRefundId   *string                    `json:"stripeRefundId,omitempty"`
	ReviewedAt       *time.Time                 `json:"reviewedAt,omitempty"`
	ProcessedAt      *time.Time                 `json:"processedAt,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
	Eligibility      *RefundEligibilityResponse `json:"eligibility,omitempty"`
}

// --- Admin side ---

type RefundAuthorInfo struct {
	AuthorProfileId uuid.UUID `json:"authorProfileId"`
	UserId          uuid.UUID `json:"userId"`
	PenName         string    `json:"penName"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
}

type RefundPurchaseInfo struct {
	Id            uuid.UUID       `json:"id"`
	Credits       int             `json:"credits"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"paymentStatus"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
}

type AdminRefundRequestResponse struct {
	RefundRequestResponse
	ReviewedBy *uuid.UUID          `json:"reviewedBy,omitempty"`
	Author     *RefundAuthorInfo   `json:"author,omitempty"`
	Purchase   *RefundPurchaseInfo `json:"purchase,omitempty"`
}

type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ProcessRefundRequest struct {
	Decision     string           `json:"decision" validate:"required,oneof=approve approve_partial reject"`
	AdminNotes   string           `json:"adminNotes,omitempty"`
	RefundAmount *decimal.Decimal `json:"refundAmount,omitempty"`
}

type ProcessRefundResponse struct {
	RefundId       uuid.UUID        `json:"refundId"`
	Status         string           `json:"status"`
	RefundAmount   *decimal.Decimal `json:"refundAmount,omitempty"`
	StripeRefundId string           `json:"stripeRefundId,omitempty"`
	ProcessedAt    *time.Time       `json:"processedAt,omitempty"`
}
