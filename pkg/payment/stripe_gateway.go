package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.PaymentReference == "" {
		return nil, ErrMissingPaymentReference
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentReference),
		Amount:        stripe.Int64(req.AmountMinor),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.AddMetadata("reason", req.Reason)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Msg != "" {
			return nil, fmt.Errorf("stripe: %s", stripeErr.Msg)
		}
		return nil, err
	}

	return &RefundResult{
		ProviderRefundId: refund.ID,
		Status:           string(refund.Status),
	}, nil
}
