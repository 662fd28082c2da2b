package domain

import (
	"errors"
	"time"
)

var (
	// ErrOrderNotFound — заказа нет или email покупателя не совпал.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderState — переход статуса из текущего состояния запрещён.
	ErrOrderState = errors.New("order status transition not allowed")
)

// OrderStatus — этап жизненного цикла заказа.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderFlow — нормальная последовательность статусов (без отмены).
var OrderFlow = []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered}

// Rank — позиция в OrderFlow; -1 для cancelled и неизвестных значений.
func (s OrderStatus) Rank() int {
	for i, st := range OrderFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid — известный статус.
func (s OrderStatus) Valid() bool { return s == OrderCancelled || s.Rank() >= 0 }

// Terminal — из delivered и cancelled переходов нет.
func (s OrderStatus) Terminal() bool { return s == OrderDelivered || s == OrderCancelled }

// CustomerCancellable — покупатель может отменить заказ только до начала сборки.
func (s OrderStatus) CustomerCancellable() bool { return s == OrderPending || s == OrderConfirmed }

// CanTransition — статус движется только вперёд; отмена возможна до отгрузки.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() || !to.Valid() || from == to {
		return false
	}
	if to == OrderCancelled {
		return from.Rank() < OrderShipped.Rank()
	}
	return to.Rank() > from.Rank()
}

// PaymentMethod — способ оплаты заказа.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

// PaymentStatus — состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// CustomerInfo — контакты покупателя; email служит ключом доступа к заказу.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ShippingAddress — адрес доставки.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// OrderItem — позиция заказа; название, цена и SKU фиксируются на момент покупки.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	SKU       string `json:"sku"`
}

// OrderPayment — реквизиты оплаты через платёжный шлюз.
type OrderPayment struct {
	GatewayOrderID string `json:"razorpay_order_id,omitempty"`
	PaymentID      string `json:"razorpay_payment_id,omitempty"`
	Signature      string `json:"-"`
}

// StatusChange — запись истории статусов.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	ChangedAt time.Time   `json:"changed_at"`
}

// Order — заказ покупателя. Суммы — в пайсах.
type Order struct {
	OrderNumber        string          `json:"order_number"`
	Customer           CustomerInfo    `json:"customer"`
	ShippingAddress    ShippingAddress `json:"shipping_address"`
	Items              []OrderItem     `json:"items"`
	Subtotal           int64           `json:"subtotal"`
	Tax                int64           `json:"tax"`
	Shipping           int64           `json:"shipping"`
	Discount           int64           `json:"discount"`
	Total              int64           `json:"total"`
	PaymentMethod      PaymentMethod   `json:"payment_method"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	Payment            OrderPayment    `json:"payment"`
	Status             OrderStatus     `json:"status"`
	TrackingNumber     string          `json:"tracking_number,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	EstimatedDelivery  time.Time       `json:"estimated_delivery"`
	ActualDelivery     *time.Time      `json:"actual_delivery,omitempty"`
	History            []StatusChange  `json:"history,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// OrderLine — позиция в запросе на оформление.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderDraft — запрос покупателя на оформление заказа.
type OrderDraft struct {
	Items           []OrderLine     `json:"items"`
	Customer        CustomerInfo    `json:"customer"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Notes           string          `json:"notes"`
}

// OrderStatusUpdate — изменение статуса администратором.
type OrderStatusUpdate struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"tracking_number"`
	Note           string      `json:"note"`
}

// OrderStatusChange — переход статуса для репозитория: From — ожидаемый текущий статус.
type OrderStatusChange struct {
	From               OrderStatus
	To                 OrderStatus
	TrackingNumber     string
	CancellationReason string
	Note               string
	At                 time.Time
}

// OrderFilter — выборка заказов для администратора.
type OrderFilter struct {
	Status OrderStatus `json:"status"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// TrackingStep — шаг таймлайна отслеживания.
type TrackingStep struct {
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
	Date        *time.Time  `json:"date"`
	Completed   bool        `json:"completed"`
}

// OrderTracking — публичный статус заказа с таймлайном.
type OrderTracking struct {
	OrderNumber       string         `json:"order_number"`
	Status            OrderStatus    `json:"status"`
	PaymentStatus     PaymentStatus  `json:"payment_status"`
	TrackingNumber    string         `json:"tracking_number,omitempty"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	ActualDelivery    *time.Time     `json:"actual_delivery,omitempty"`
	Timeline          []TrackingStep `json:"timeline"`
}
