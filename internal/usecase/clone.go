package usecase

import (
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// Значения в кэше общие для всех читателей, наружу отдаём копии.

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneProducts(list []*domain.Product) []*domain.Product {
	if list == nil {
		return nil
	}
	out := make([]*domain.Product, len(list))
	for i, p := range list {
		out[i] = cloneProduct(p)
	}
	return out
}

func cloneOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	cp.History = append([]domain.StatusChange(nil), o.History...)
	cp.ActualDelivery = cloneTime(o.ActualDelivery)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
