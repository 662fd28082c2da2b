package validate

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации заказа.
var ErrInvalidOrder = errors.New("order validation failed")

const (
	customerNameMin, customerNameMax = 2, 100
	maxOrderLines                    = 50
	maxLineQuantity                  = 100
	notesMax                         = 500
)

// OrderValidator — структура для валидации запроса на оформление заказа.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// Validate — проверяет позиции, контакты, адрес и способ оплаты.
func (v *OrderValidator) Validate(_ context.Context, d *domain.OrderDraft) error {
	if d == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if err := v.validateLines(d.Items); err != nil {
		return err
	}
	if err := v.validateCustomer(&d.Customer); err != nil {
		return err
	}
	if err := v.validateAddress(&d.ShippingAddress); err != nil {
		return err
	}
	switch d.PaymentMethod {
	case domain.PaymentOnline, domain.PaymentCOD:
	default:
		return fmt.Errorf("%w: payment_method должен быть online или cod", ErrInvalidOrder)
	}
	if utf8.RuneCountInString(d.Notes) > notesMax {
		return fmt.Errorf("%w: notes не длиннее %d символов", ErrInvalidOrder, notesMax)
	}
	return nil
}

// Валидация позиций
func (v *OrderValidator) validateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", ErrInvalidOrder)
	}
	if len(lines) > maxOrderLines {
		return fmt.Errorf("%w: не больше %d позиций в заказе", ErrInvalidOrder, maxOrderLines)
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return fmt.Errorf("%w: items[%d].product_id обязателен", ErrInvalidOrder, i)
		}
		if l.Quantity < 1 || l.Quantity > maxLineQuantity {
			return fmt.Errorf("%w: items[%d].quantity должен быть от 1 до %d", ErrInvalidOrder, i, maxLineQuantity)
		}
		if _, dup := seen[l.ProductID]; dup {
			return fmt.Errorf("%w: items[%d].product_id повторяется", ErrInvalidOrder, i)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

// Валидация покупателя
func (v *OrderValidator) validateCustomer(c *domain.CustomerInfo) error {
	n := utf8.RuneCountInString(strings.TrimSpace(c.Name))
	if n < customerNameMin || n > customerNameMax {
		return fmt.Errorf("%w: customer.name должен содержать от %d до %d символов",
			ErrInvalidOrder, customerNameMin, customerNameMax)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: customer.email обязателен", ErrInvalidOrder)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: customer.email некорректен", ErrInvalidOrder)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: customer.phone обязателен", ErrInvalidOrder)
	}
	return nil
}

// Валидация адреса доставки
func (v *OrderValidator) validateAddress(a *domain.ShippingAddress) error {
	fields := []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zip_code", a.ZipCode},
		{"phone", a.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping_address.%s обязателен", ErrInvalidOrder, f.name)
		}
	}
	return nil
}
