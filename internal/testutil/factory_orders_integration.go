//go:build integration

package testutil

import (
	"strings"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// MakeOrder — мини-генератор валидного COD-заказа с уникальным номером.
func MakeOrder(opts ...func(*domain.Order)) domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)

	o := domain.Order{
		OrderNumber: "CAO" + strings.ToUpper(UniqSuffix()),
		Customer: domain.CustomerInfo{
			Name:  "Asha Rao",
			Email: "asha+" + UniqSuffix() + "@example.com",
			Phone: "+919800000000",
		},
		ShippingAddress: domain.ShippingAddress{
			Street:  "12 MG Road",
			City:    "Pune",
			State:   "MH",
			ZipCode: "411001",
			Country: "India",
			Phone:   "+919800000000",
		},
		Items: []domain.OrderItem{
			{ProductID: "prd-" + UniqSuffix(), Name: "Mango Concentrate", Price: 24900, Quantity: 2, SKU: "MNG-001"},
			{ProductID: "prd-" + UniqSuffix(), Name: "Kesar Syrup", Price: 19900, Quantity: 1, SKU: "KSR-030"},
		},
		Subtotal:          69700,
		Tax:               12546,
		Shipping:          5000,
		Total:             87246,
		PaymentMethod:     domain.PaymentCOD,
		PaymentStatus:     domain.PaymentPending,
		Status:            domain.OrderPending,
		EstimatedDelivery: now.Add(72 * time.Hour),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// PaidOnline — онлайн-заказ с ID заказа платёжного шлюза.
func PaidOnline(gatewayOrderID string) func(*domain.Order) {
	return func(o *domain.Order) {
		o.PaymentMethod = domain.PaymentOnline
		o.Payment.GatewayOrderID = gatewayOrderID
	}
}

func WithStatus(status domain.OrderStatus) func(*domain.Order) {
	return func(o *domain.Order) { o.Status = status }
}

func CreatedAt(t time.Time) func(*domain.Order) {
	return func(o *domain.Order) { o.CreatedAt, o.UpdatedAt = t, t }
}
