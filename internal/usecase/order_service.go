package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// Проверка, что OrderService удовлетворяет интерфейсам ports.OrderService и ports.PaymentRecorder.
var (
	_ ports.OrderService    = (*OrderService)(nil)
	_ ports.PaymentRecorder = (*OrderService)(nil)
)

const (
	orderKeyPrefix = "order:"
	orderPrefix    = "CAO"

	// Налог и доставка в пайсах: GST 18%, бесплатная доставка от ₹1000, иначе ₹50.
	taxPercent        = 18
	freeShippingFrom  = 100000
	standardShipping  = 5000
	deliveryLeadTime  = 3 * 24 * time.Hour
	defaultCountry    = "India"
	cancelReasonMax   = 500
	trackingNumberMin = 5
	trackingNumberMax = 50
	maxOrdersPage     = 100
)

var stepDescriptions = map[domain.OrderStatus]string{
	domain.OrderPending:    "Order placed successfully",
	domain.OrderConfirmed:  "Order confirmed and being prepared",
	domain.OrderProcessing: "Order is being processed",
	domain.OrderShipped:    "Order has been shipped",
	domain.OrderDelivered:  "Order delivered successfully",
	domain.OrderCancelled:  "Order cancelled",
}

// OrderCacheKey — ключ заказа в кэше.
func OrderCacheKey(number string) string { return orderKeyPrefix + number }

// OrderService — оформление заказов: цены берутся из каталога, онлайн-оплата
// заводится в платёжном шлюзе, чтения заказа мемоизированы по номеру.
type OrderService struct {
	repo      ports.OrderRepository
	products  ports.ProductService
	payments  ports.PaymentGateway
	validator ports.OrderValidator
	cache     ports.Cache
	log       ports.Logger

	now         func() time.Time
	getByNumber func(context.Context, string) (*domain.Order, error)
}

// NewOrderService — DI-конструктор. ttl <= 0 — TTL кэша по умолчанию.
func NewOrderService(
	repo ports.OrderRepository,
	products ports.ProductService,
	payments ports.PaymentGateway,
	validator ports.OrderValidator,
	cache ports.Cache,
	log ports.Logger,
	ttl time.Duration,
) *OrderService {
	s := &OrderService{
		repo:      repo,
		products:  products,
		payments:  payments,
		validator: validator,
		cache:     cache,
		log:       log,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	s.getByNumber = memory.Memoize(cache, "order", ttl, s.loadOrder, memory.WithKeyFunc(OrderCacheKey))
	return s
}

// CreateOrder — валидация, расчёт сумм по ценам каталога, заказ в платёжном шлюзе (online), сохранение.
func (s *OrderService) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	if err := s.validator.Validate(ctx, &draft); err != nil {
		s.log.Warnf(ctx, "order validation failed email=%s err=%v", draft.Customer.Email, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// TODO: резервировать остаток при оформлении, сейчас stock только проверяется.
	items, err := s.resolveItems(ctx, draft.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		OrderNumber:       newOrderNumber(now),
		Customer:          draft.Customer,
		ShippingAddress:   draft.ShippingAddress,
		Items:             items,
		PaymentMethod:     draft.PaymentMethod,
		PaymentStatus:     domain.PaymentPending,
		Status:            domain.OrderPending,
		Notes:             strings.TrimSpace(draft.Notes),
		EstimatedDelivery: now.Add(deliveryLeadTime),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.Customer.Email = normalizeEmail(order.Customer.Email)
	if strings.TrimSpace(order.ShippingAddress.Country) == "" {
		order.ShippingAddress.Country = defaultCountry
	}
	order.Subtotal, order.Tax, order.Shipping, order.Total = priceOrder(items)

	if order.PaymentMethod == domain.PaymentOnline {
		po, err := s.payments.CreateOrder(ctx, domain.PaymentOrderRequest{
			Amount:   order.Total,
			Currency: defaultCurrency,
			Receipt:  order.OrderNumber,
			Notes:    map[string]string{"order_number": order.OrderNumber},
		})
		if err != nil {
			s.log.Errorf(ctx, "payment order failed order=%s amount=%d err=%v", order.OrderNumber, order.Total, err)
			return nil, fmt.Errorf("%w: create payment order: %w", ErrGateway, err)
		}
		order.Payment.GatewayOrderID = po.ID
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.log.Errorf(ctx, "repo.Create failed order=%s err=%v", order.OrderNumber, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.Infof(ctx, "order created number=%s total=%d method=%s", order.OrderNumber, order.Total, order.PaymentMethod)
	return cloneOrder(order), nil
}

// GetOrder — заказ по номеру; email должен совпасть с email покупателя.
func (s *OrderService) GetOrder(ctx context.Context, number, email string) (*domain.Order, error) {
	o, err := s.ownedOrder(ctx, number, email)
	if err != nil {
		return nil, err
	}
	return cloneOrder(o), nil
}

// TrackOrder — статус заказа и таймлайн по этапам.
func (s *OrderService) TrackOrder(ctx context.Context, number, email string) (*domain.OrderTracking, error) {
	o, err := s.ownedOrder(ctx, number, email)
	if err != nil {
		return nil, err
	}
	return buildTracking(o), nil
}

// CancelOrder — отмена покупателем; возможна только в статусах pending и confirmed.
func (s *OrderService) CancelOrder(ctx context.Context, number, email, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > cancelReasonMax {
		return nil, fmt.Errorf("%w: reason не длиннее %d символов", validate.ErrInvalidOrder, cancelReasonMax)
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	if err := requireEmail(email); err != nil {
		return nil, err
	}

	o, err := s.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(o.Customer.Email, normalizeEmail(email)) {
		return nil, fmt.Errorf("%w: number=%s", domain.ErrOrderNotFound, number)
	}
	if !o.Status.CustomerCancellable() {
		return nil, fmt.Errorf("%w: order cannot be cancelled at this stage (status=%s)", domain.ErrOrderState, o.Status)
	}

	return s.applyChange(ctx, number, domain.OrderStatusChange{
		From:               o.Status,
		To:                 domain.OrderCancelled,
		CancellationReason: reason,
		Note:               "cancelled by customer",
	})
}

// UpdateStatus — смена статуса администратором; статус движется только вперёд.
func (s *OrderService) UpdateStatus(ctx context.Context, number string, upd domain.OrderStatusUpdate) (*domain.Order, error) {
	if !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: неизвестный статус %q", validate.ErrInvalidOrder, upd.Status)
	}
	upd.TrackingNumber = strings.TrimSpace(upd.TrackingNumber)
	if n := utf8.RuneCountInString(upd.TrackingNumber); n > 0 && (n < trackingNumberMin || n > trackingNumberMax) {
		return nil, fmt.Errorf("%w: tracking_number должен содержать от %d до %d символов",
			validate.ErrInvalidOrder, trackingNumberMin, trackingNumberMax)
	}

	o, err := s.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(o.Status, upd.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrOrderState, o.Status, upd.Status)
	}

	return s.applyChange(ctx, number, domain.OrderStatusChange{
		From:           o.Status,
		To:             upd.Status,
		TrackingNumber: upd.TrackingNumber,
		Note:           strings.TrimSpace(upd.Note),
	})
}

// ListOrders — страница заказов для администратора (без кэша).
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: неизвестный статус %q", validate.ErrInvalidOrder, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxOrdersPage {
		filter.Limit = maxOrdersPage
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Errorf(ctx, "repo.List failed filter=%+v err=%v", filter, err)
		return nil, err
	}
	return list, nil
}

// RecordPayment — подтверждённая оплата: заказ с этим ID платёжного заказа помечается оплаченным.
// Нет такого заказа — domain.ErrOrderNotFound.
func (s *OrderService) RecordPayment(ctx context.Context, v domain.PaymentVerification) error {
	number, err := s.repo.MarkPaid(ctx, v.OrderID, domain.OrderPayment{
		GatewayOrderID: v.OrderID,
		PaymentID:      v.PaymentID,
		Signature:      v.Signature,
	}, s.now())
	if err != nil {
		s.log.Errorf(ctx, "repo.MarkPaid failed gateway_order=%s err=%v", v.OrderID, err)
		return fmt.Errorf("failed to record payment: %w", err)
	}
	if number == "" {
		return fmt.Errorf("%w: gateway order=%s", domain.ErrOrderNotFound, v.OrderID)
	}

	s.cache.Delete(OrderCacheKey(number))
	s.log.Infof(ctx, "order paid number=%s payment=%s", number, v.PaymentID)
	return nil
}

// applyChange — запись перехода, инвалидация и свежее чтение заказа.
func (s *OrderService) applyChange(ctx context.Context, number string, change domain.OrderStatusChange) (*domain.Order, error) {
	change.At = s.now()
	if err := s.repo.UpdateStatus(ctx, number, change); err != nil {
		if errors.Is(err, domain.ErrOrderState) {
			return nil, err
		}
		s.log.Errorf(ctx, "repo.UpdateStatus failed order=%s err=%v", number, err)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	s.cache.Delete(OrderCacheKey(number))
	s.log.Infof(ctx, "order status changed number=%s %s -> %s", number, change.From, change.To)

	o, err := s.loadOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	return cloneOrder(o), nil
}

// ownedOrder — заказ из кэша; чужой email неотличим от отсутствующего заказа.
func (s *OrderService) ownedOrder(ctx context.Context, number, email string) (*domain.Order, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	o, err := s.getByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(o.Customer.Email, normalizeEmail(email)) {
		return nil, fmt.Errorf("%w: number=%s", domain.ErrOrderNotFound, number)
	}
	return o, nil
}

// loadOrder — чтение из БД; nil от репозитория превращается в ErrOrderNotFound.
func (s *OrderService) loadOrder(ctx context.Context, number string) (*domain.Order, error) {
	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByNumber failed order=%s err=%v", number, err)
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: number=%s", domain.ErrOrderNotFound, number)
	}
	return o, nil
}

// resolveItems — позиции с названием, ценой и SKU из каталога; проверка остатка.
func (s *OrderService) resolveItems(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for i, l := range lines {
		p, err := s.products.GetProduct(ctx, l.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: items[%d] товар %s не найден", validate.ErrInvalidOrder, i, l.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", l.ProductID, err)
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("%w: items[%d] недостаточно товара %s на складе (есть %d)",
				validate.ErrInvalidOrder, i, l.ProductID, p.Stock)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
			SKU:       p.SKU,
		})
	}
	return items, nil
}

// priceOrder — подытог, налог (с округлением до пайсы), доставка и итог.
func priceOrder(items []domain.OrderItem) (subtotal, tax, shipping, total int64) {
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}
	tax = (subtotal*taxPercent + 50) / 100
	if subtotal < freeShippingFrom {
		shipping = standardShipping
	}
	return subtotal, tax, shipping, subtotal + tax + shipping
}

// buildTracking — таймлайн по OrderFlow; отменённый заказ получает шаг cancelled в конце.
func buildTracking(o *domain.Order) *domain.OrderTracking {
	reached := make(map[domain.OrderStatus]time.Time, len(o.History))
	for _, h := range o.History {
		reached[h.Status] = h.ChangedAt
	}
	if _, ok := reached[domain.OrderPending]; !ok {
		reached[domain.OrderPending] = o.CreatedAt
	}

	timeline := make([]domain.TrackingStep, 0, len(domain.OrderFlow)+1)
	for _, st := range domain.OrderFlow {
		step := domain.TrackingStep{Status: st, Description: stepDescriptions[st]}
		if at, ok := reached[st]; ok {
			step.Date = &at
			step.Completed = true
		} else if o.Status != domain.OrderCancelled && st.Rank() <= o.Status.Rank() {
			step.Completed = true
		}
		timeline = append(timeline, step)
	}
	if o.Status == domain.OrderCancelled {
		step := domain.TrackingStep{Status: domain.OrderCancelled, Description: stepDescriptions[domain.OrderCancelled], Completed: true}
		if at, ok := reached[domain.OrderCancelled]; ok {
			step.Date = &at
		}
		timeline = append(timeline, step)
	}

	return &domain.OrderTracking{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		ActualDelivery:    cloneTime(o.ActualDelivery),
		Timeline:          timeline,
	}
}

// newOrderNumber — CAO + миллисекунды + 5 случайных заглавных букв.
func newOrderNumber(now time.Time) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var b strings.Builder
	b.WriteString(orderPrefix)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			n = big.NewInt(now.UnixNano() % int64(len(letters)))
		}
		b.WriteByte(letters[n.Int64()])
	}
	return b.String()
}

func requireEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email обязателен", validate.ErrInvalidOrder)
	}
	return nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
