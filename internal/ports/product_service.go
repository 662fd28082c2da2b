package ports

import (
	"context"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// ProductService — сервис каталога для транспортного слоя.
type ProductService interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]*domain.Product, error)

	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
