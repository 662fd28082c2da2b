package ports

import (
	"context"
	"encoding/json"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// CheckoutService — оплата и доставка для транспортного слоя.
type CheckoutService interface {
	CreatePaymentOrder(ctx context.Context, req domain.PaymentOrderRequest) (*domain.PaymentOrder, error)
	VerifyPayment(ctx context.Context, v domain.PaymentVerification) (bool, error)
	CreateShipment(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	TrackShipment(ctx context.Context, awb string) (json.RawMessage, error)
}
