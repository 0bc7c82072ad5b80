package refund

import (
	"fmt"
	"time"

	"bookreview-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultWindowDays = 30

const (
	ReasonAlreadyRefunded = "This purchase has already been refunded"
	ReasonNotCompleted    = "Payment has not been completed"
	ReasonCreditsUsed     = "Credits from this purchase have already been used"
	ReasonActiveCampaigns = "Cannot refund while you have active campaigns"
	ReasonRequestOpen     = "A refund request is already open for this purchase"
)

// EligibilityInput is everything the policy looks at. Nothing here is read from storage by the policy itself.
type EligibilityInput struct {
	Purchase           *entity.CreditPurchase
	Author             *entity.AuthorProfile
	HasActiveCampaigns bool
	OpenRequest        *entity.RefundRequest
	// RefundedAmount is what COMPLETED requests already paid back on the purchase.
	RefundedAmount     decimal.Decimal
	Now                time.Time
}

type Eligibility struct {
	CreditPurchaseId  uuid.UUID
	IsEligible        bool
	Reason            string
	DaysSincePurchase int
	DaysRemaining     int
	Credits           int
	CreditsUsed       int
	AmountPaid        decimal.Decimal
	Currency          string
	ExistingRequestId *uuid.UUID
}

// Policy decides whether a credit purchase can still be refunded.
type Policy struct {
	windowDays int
}

func NewPolicy(windowDays int) Policy {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return Policy{windowDays: windowDays}
}

func (p Policy) WindowDays() int {
	return p.windowDays
}

// CheckEligibility runs the checks in a fixed order and reports only the first failure.
func (p Policy) CheckEligibility(in EligibilityInput) Eligibility {
	purchase := in.Purchase
	daysSince := DaysBetween(purchase.PurchaseDate, in.Now)
	used := CreditsUsedFromPurchase(in.Author, purchase)

	out := Eligibility{
		CreditPurchaseId:  purchase.Id,
		DaysSincePurchase: daysSince,
		DaysRemaining:     max(0, p.windowDays-daysSince),
		Credits:           purchase.Credits,
		CreditsUsed:       used,
		AmountPaid:        purchase.AmountPaid,
		Currency:          purchase.Currency,
	}
	if in.OpenRequest != nil {
		id := in.OpenRequest.Id
		out.ExistingRequestId = &id
	}

	switch {
	case purchase.PaymentStatus == entity.PaymentStatusRefunded, in.RefundedAmount.IsPositive():
		out.Reason = ReasonAlreadyRefunded
	case purchase.PaymentStatus != entity.PaymentStatusCompleted:
		out.Reason = ReasonNotCompleted
	case daysSince > p.windowDays:
		out.Reason = fmt.Sprintf("Refund window of %d days has passed", p.windowDays)
	case used > 0:
		out.Reason = ReasonCreditsUsed
	case in.HasActiveCampaigns:
		out.Reason = ReasonActiveCampaigns
	case in.OpenRequest != nil && in.OpenRequest.Status.IsOpen():
		out.Reason = ReasonRequestOpen
	default:
		out.IsEligible = true
	}
	return out
}

// DaysBetween is the floor of whole days elapsed from start to now, never negative.
func DaysBetween(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / (24 * time.Hour))
}

// CreditsUsedFromPurchase attributes consumption to purchases in the order they were made.
func CreditsUsedFromPurchase(author *entity.AuthorProfile, purchase *entity.CreditPurchase) int {
	if author == nil {
		return 0
	}
	fromEarlier := author.TotalCreditsPurchased - purchase.Credits
	return max(0, author.TotalCreditsUsed-fromEarlier)
}
