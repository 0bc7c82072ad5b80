package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMissingPaymentReference is returned when the purchase has no processor payment id.
var ErrMissingPaymentReference = errors.New("purchase has no payment reference")

type RefundRequest struct {
	// PaymentReference is the Stripe payment intent id or the Midtrans order id.
	PaymentReference string
	// AmountMinor is expressed in the smallest currency unit (cents).
	AmountMinor    int64
	Currency       string
	Reason         string
	IdempotencyKey string
}

type RefundResult struct {
	ProviderRefundId string
	Status           string
}

// Gateway issues refunds against a payment processor.
type Gateway interface {
	Name() string
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// New picks the configured gateway.
func New(provider, stripeKey, midtransKey string, midtransProduction bool) (Gateway, error) {
	switch provider {
	case "stripe":
		return NewStripeGateway(stripeKey), nil
	case "midtrans":
		return NewMidtransGateway(midtransKey, midtransProduction), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", provider)
	}
}
