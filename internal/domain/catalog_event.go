package domain

import "time"

// Типы событий каталога.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventCatalogFlush   = "catalog.flush"
)

// CatalogEvent — событие изменения каталога из Kafka.
type CatalogEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
