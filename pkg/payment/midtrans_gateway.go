package payment

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// MidtransGateway refunds through the Core API. Midtrans takes whole currency units.
type MidtransGateway struct {
	client coreapi.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var c coreapi.Client
	c.New(serverKey, env)
	return &MidtransGateway{client: c}
}

func (g *MidtransGateway) Name() string {
	return "midtrans"
}

func (g *MidtransGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.PaymentReference == "" {
		return nil, ErrMissingPaymentReference
	}

	refundKey := req.IdempotencyKey
	if refundKey == "" {
		refundKey = fmt.Sprintf("refund-%s", req.PaymentReference)
	}

	res, midErr := g.client.RefundTransaction(req.PaymentReference, &coreapi.RefundReq{
		RefundKey: refundKey,
		Amount:    req.AmountMinor / 100,
		Reason:    req.Reason,
	})
	if midErr != nil {
		return nil, fmt.Errorf("midtrans: %s", midErr.GetMessage())
	}

	return &RefundResult{
		ProviderRefundId: refundKey,
		Status:           res.StatusCode,
	}, nil
}
