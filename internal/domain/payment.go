package domain

// PaymentOrderRequest — запрос на создание заказа в платёжном шлюзе.
type PaymentOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency,omitempty"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// PaymentOrder — заказ платёжного шлюза (ответ API как есть).
type PaymentOrder struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes"`
	CreatedAt  int64             `json:"created_at"`
}

// PaymentVerification — параметры, которые клиент получает от checkout-виджета после оплаты.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}
