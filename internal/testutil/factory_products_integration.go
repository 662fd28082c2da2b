//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeProduct — мини-генератор валидного товара с уникальными ID и SKU.
func MakeProduct(opts ...func(*domain.Product)) domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := domain.Product{
		ID:          "prd-" + UniqSuffix(),
		Name:        "Alphonso Mango Concentrate",
		Description: "Cold-pressed mango concentrate, 500 ml",
		Price:       34900,
		Category:    domain.CategoryConcentrate,
		Stock:       25,
		// SKU ограничен 20 символами валидатором
		SKU:       "SKU-" + strings.ToUpper(randHex(5)),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, fn := range opts {
		fn(&p)
	}
	return p
}

func WithCategory(category string) func(*domain.Product) {
	return func(p *domain.Product) { p.Category = category }
}

func WithPrice(price int64) func(*domain.Product) {
	return func(p *domain.Product) { p.Price = price }
}

func WithName(name string) func(*domain.Product) {
	return func(p *domain.Product) { p.Name = name }
}

func Featured() func(*domain.Product) {
	return func(p *domain.Product) { p.IsFeatured = true }
}

// UpdatedAgo — сдвигает updated_at в прошлое (для проверки порядка HotIDs/Featured).
func UpdatedAgo(d time.Duration) func(*domain.Product) {
	return func(p *domain.Product) { p.UpdatedAt = p.UpdatedAt.Add(-d) }
}
