package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// ValidateProductFromJSON — валидация товара из JSON.
func ValidateProductFromJSON(ctx context.Context, validator ports.ProductValidator, raw []byte) (*domain.Product, error) {
	var product domain.Product
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&product); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	if err := validator.Validate(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
