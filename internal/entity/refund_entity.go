package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundStatus represents the status of a refund request
type RefundStatus string

// RefundReason is the author-selected motive for a refund
type RefundReason string

const (
	RefundStatusPending           RefundStatus = "PENDING"
	RefundStatusApproved          RefundStatus = "APPROVED"
	RefundStatusPartiallyApproved RefundStatus = "PARTIALLY_APPROVED"
	RefundStatusRejected          RefundStatus = "REJECTED"
	RefundStatusProcessing        RefundStatus = "PROCESSING"
	RefundStatusCompleted         RefundStatus = "COMPLETED"

	RefundReasonChangedMind        RefundReason = "CHANGED_MIND"
	RefundReasonAccidentalPurchase RefundReason = "ACCIDENTAL_PURCHASE"
	RefundReasonServiceIssue       RefundReason = "SERVICE_ISSUE"
	RefundReasonDuplicatePurchase  RefundReason = "DUPLICATE_PURCHASE"
	RefundReasonOther              RefundReason = "OTHER"
)

// OpenRefundStatuses are the statuses that block a new request for the same purchase.
var OpenRefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusApproved,
	RefundStatusProcessing,
}

func (s RefundStatus) IsOpen() bool {
	for _, open := range OpenRefundStatuses {
		if s == open {
			return true
		}
	}
	return false
}

func (r RefundReason) IsValid() bool {
	switch r {
	case RefundReasonChangedMind, RefundReasonAccidentalPurchase, RefundReasonServiceIssue,
		RefundReasonDuplicatePurchase, RefundReasonOther:
		return true
	default:
		return false
	}
}

type RefundRequest struct {
	Id               uuid.UUID
	CreditPurchaseId uuid.UUID
	AuthorProfileId  uuid.UUID
	Reason           RefundReason
	Explanation      string
	Status           RefundStatus
	AdminNotes       string
	RefundAmount     *decimal.Decimal
	ReviewedBy       *uuid.UUID
	ReviewedAt       *time.Time
	StripeRefundId   *string
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	CreditPurchase *CreditPurchase
	AuthorProfile  *AuthorProfile
}
