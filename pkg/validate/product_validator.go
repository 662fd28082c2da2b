package validate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// Проверка, что ProductValidator удовлетворяет интерфейсу ports.ProductValidator.
var _ ports.ProductValidator = (*ProductValidator)(nil)

// ErrInvalidProduct — базовая (sentinel error) ошибка валидации товара.
var ErrInvalidProduct = errors.New("product validation failed")

// Границы длины текстовых полей (в символах).
const (
	nameMin, nameMax               = 2, 200
	descriptionMin, descriptionMax = 10, 2000
	skuMin, skuMax                 = 3, 20
)

// ProductValidator — структура для валидации товара.
type ProductValidator struct{}

// NewProductValidator — конструктор ProductValidator.
// Возвращает ErrInvalidProduct (с обёрнутой причиной) при любой проблеме.
func NewProductValidator() *ProductValidator { return &ProductValidator{} }

// Validate — проверяет корректность полей товара.
func (v *ProductValidator) Validate(_ context.Context, p *domain.Product) error {
	if p == nil {
		return fmt.Errorf("%w: товар не может быть nil", ErrInvalidProduct)
	}
	if err := checkLength("name", p.Name, nameMin, nameMax); err != nil {
		return err
	}
	if err := checkLength("description", p.Description, descriptionMin, descriptionMax); err != nil {
		return err
	}
	if err := checkLength("sku", p.SKU, skuMin, skuMax); err != nil {
		return err
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price должен быть неотрицательным", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock должен быть неотрицательным", ErrInvalidProduct)
	}
	if !slices.Contains(domain.Categories, p.Category) {
		return fmt.Errorf("%w: category %q не поддерживается (допустимы: %s)",
			ErrInvalidProduct, p.Category, strings.Join(domain.Categories, ", "))
	}
	return nil
}

// checkLength — длина trimmed-значения в символах должна лежать в [min, max].
func checkLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < minLen || n > maxLen {
		return fmt.Errorf("%w: %s должен содержать от %d до %d символов", ErrInvalidProduct, field, minLen, maxLen)
	}
	return nil
}
