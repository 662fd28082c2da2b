package ports

import (
	"context"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

type ProductValidator interface {
	Validate(ctx context.Context, product *domain.Product) error
}

type OrderValidator interface {
	Validate(ctx context.Context, draft *domain.OrderDraft) error
}
