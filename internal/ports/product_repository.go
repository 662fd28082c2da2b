package ports

import (
	"context"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Featured(ctx context.Context, limit int) ([]*domain.Product, error)
	HotIDs(ctx context.Context, n int) ([]string, error)
}
