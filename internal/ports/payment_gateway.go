package ports

import (
	"context"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// PaymentGateway — удалённый платёжный шлюз.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req domain.PaymentOrderRequest) (*domain.PaymentOrder, error)
	// VerifySignature — HMAC-проверка подписи платежа (без сетевых вызовов).
	VerifySignature(orderID, paymentID, signature string) bool
}
