package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
)

// ErrInvalidEvent — событие каталога нельзя обработать ни сейчас, ни при повторе.
var ErrInvalidEvent = errors.New("catalog event validation failed")

// ParseCatalogEvent — строгий разбор события (неизвестные поля и хвост запрещены) и его проверка.
func ParseCatalogEvent(raw []byte) (*domain.CatalogEvent, error) {
	var event domain.CatalogEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrInvalidEvent, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidEvent)
	}
	if err := ValidateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ValidateEvent — тип известен; для product.* обязателен product_id.
func ValidateEvent(e *domain.CatalogEvent) error {
	if e == nil {
		return fmt.Errorf("%w: событие не может быть nil", ErrInvalidEvent)
	}
	switch e.Type {
	case domain.EventProductCreated, domain.EventProductUpdated, domain.EventProductDeleted:
		if strings.TrimSpace(e.ProductID) == "" {
			return fmt.Errorf("%w: product_id обязателен для %s", ErrInvalidEvent, e.Type)
		}
	case domain.EventCatalogFlush:
	default:
		return fmt.Errorf("%w: неизвестный тип события %q", ErrInvalidEvent, e.Type)
	}
	return nil
}
