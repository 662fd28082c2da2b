package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, number string, change domain.OrderStatusChange) error
	MarkPaid(ctx context.Context, gatewayOrderID string, payment domain.OrderPayment, at time.Time) (string, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
}
