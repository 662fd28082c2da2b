package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// Проверка, что CheckoutService удовлетворяет интерфейсу ports.CheckoutService.
var _ ports.CheckoutService = (*CheckoutService)(nil)

var (
	// ErrInvalidPayment — некорректные параметры оплаты.
	ErrInvalidPayment = errors.New("invalid payment request")
	// ErrInvalidShipment — некорректные параметры доставки.
	ErrInvalidShipment = errors.New("invalid shipment request")
	// ErrGateway — внешний шлюз недоступен или отказал.
	ErrGateway = errors.New("gateway request failed")
)

const (
	defaultCurrency = "INR"
	trackNamespace  = "shipping:track"
)

// CheckoutService — оплата и доставка через внешние шлюзы.
type CheckoutService struct {
	payments ports.PaymentGateway
	shipping ports.ShippingGateway
	log      ports.Logger
	recorder ports.PaymentRecorder

	track func(context.Context, string) (json.RawMessage, error)
}

// CheckoutOption — необязательные зависимости CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithPaymentRecorder — подтверждённая оплата фиксируется в заказе покупателя.
func WithPaymentRecorder(r ports.PaymentRecorder) CheckoutOption {
	return func(s *CheckoutService) { s.recorder = r }
}

// NewCheckoutService — DI-конструктор. Статус отслеживания кэшируется на trackTTL.
func NewCheckoutService(
	payments ports.PaymentGateway,
	shipping ports.ShippingGateway,
	cache ports.Cache,
	log ports.Logger,
	trackTTL time.Duration,
	opts ...CheckoutOption,
) *CheckoutService {
	s := &CheckoutService{
		payments: payments,
		shipping: shipping,
		log:      log,
		track: memory.Memoize(cache, trackNamespace, trackTTL, shipping.Track,
			memory.WithKeyFunc(func(awb string) string { return trackNamespace + ":" + awb })),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePaymentOrder — заказ в платёжном шлюзе. Сумма в минимальных единицах валюты.
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, req domain.PaymentOrderRequest) (*domain.PaymentOrder, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount должен быть положительным", ErrInvalidPayment)
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}
	if req.Receipt == "" {
		// receipt у шлюза ограничен 40 символами
		req.Receipt = "receipt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	order, err := s.payments.CreateOrder(ctx, req)
	if err != nil {
		s.log.Errorf(ctx, "payment order failed receipt=%s amount=%d err=%v", req.Receipt, req.Amount, err)
		return nil, fmt.Errorf("%w: create payment order: %w", ErrGateway, err)
	}
	s.log.Infof(ctx, "payment order created id=%s receipt=%s amount=%d %s", order.ID, req.Receipt, req.Amount, req.Currency)
	return order, nil
}

// VerifyPayment — подлинность подписи платежа; подлинная оплата отмечается в заказе покупателя.
func (s *CheckoutService) VerifyPayment(ctx context.Context, v domain.PaymentVerification) (bool, error) {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return false, fmt.Errorf("%w: razorpay_order_id, razorpay_payment_id и razorpay_signature обязательны", ErrInvalidPayment)
	}

	if !s.payments.VerifySignature(v.OrderID, v.PaymentID, v.Signature) {
		metrics.PaymentVerifications.WithLabelValues("rejected").Inc()
		s.log.Warnf(ctx, "payment signature rejected order=%s payment=%s", v.OrderID, v.PaymentID)
		return false, nil
	}
	metrics.PaymentVerifications.WithLabelValues("authentic").Inc()
	s.log.Infof(ctx, "payment verified order=%s payment=%s", v.OrderID, v.PaymentID)

	if s.recorder != nil {
		err := s.recorder.RecordPayment(ctx, v)
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			// платёжный заказ создан напрямую через /payments/orders
			s.log.Infof(ctx, "no checkout order for payment order=%s", v.OrderID)
		case err != nil:
			return false, fmt.Errorf("record payment: %w", err)
		}
	}
	return true, nil
}

// CreateShipment — проксирование заказа доставки (тело должно быть JSON-объектом).
func (s *CheckoutService) CreateShipment(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: ожидается JSON-объект", ErrInvalidShipment)
	}

	out, err := s.shipping.CreateOrder(ctx, trimmed)
	if err != nil {
		s.log.Errorf(ctx, "shipment create failed err=%v", err)
		return nil, fmt.Errorf("%w: create shipment: %w", ErrGateway, err)
	}
	return out, nil
}

// TrackShipment — статус по AWB (кэшируется).
func (s *CheckoutService) TrackShipment(ctx context.Context, awb string) (json.RawMessage, error) {
	awb = strings.TrimSpace(awb)
	if awb == "" {
		return nil, fmt.Errorf("%w: awb обязателен", ErrInvalidShipment)
	}

	out, err := s.track(ctx, awb)
	if err != nil {
		s.log.Warnf(ctx, "shipment tracking failed awb=%s err=%v", awb, err)
		return nil, fmt.Errorf("%w: track shipment: %w", ErrGateway, err)
	}
	return bytes.Clone(out), nil
}
