package ports

import (
	"context"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// OrderService — оформление и сопровождение заказов покупателей.
type OrderService interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
	GetOrder(ctx context.Context, number, email string) (*domain.Order, error)
	TrackOrder(ctx context.Context, number, email string) (*domain.OrderTracking, error)
	CancelOrder(ctx context.Context, number, email, reason string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, number string, update domain.OrderStatusUpdate) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
}

// PaymentRecorder — фиксация подтверждённой оплаты в заказе.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, v domain.PaymentVerification) error
}
