package ports

import (
	"context"
	"encoding/json"
)

// ShippingGateway — удалённый сервис доставки; тела запросов и ответов передаются как есть.
type ShippingGateway interface {
	CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	Track(ctx context.Context, awb string) (json.RawMessage, error)
}
