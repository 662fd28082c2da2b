package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

const orderColumns = `order_number, customer_name, customer_email, customer_phone,
	ship_street, ship_city, ship_state, ship_zip, ship_country, ship_phone,
	subtotal, tax, shipping, discount, total,
	payment_method, payment_status, gateway_order_id, gateway_payment_id,
	status, tracking_number, notes, cancellation_reason,
	estimated_delivery, actual_delivery, created_at, updated_at`

// OrderRepository — заказы покупателей на Postgres (pgxpool).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository — конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

// Create — транзакционно сохраняет заказ, его позиции и первую запись истории.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o == nil || o.OrderNumber == "" {
		return errors.New("order is empty or order_number is required")
	}

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, transaction)

	// 1) orders
	if _, err = transaction.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`, gateway_signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`,
		o.OrderNumber, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.ZipCode, o.ShippingAddress.Country, o.ShippingAddress.Phone,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total,
		o.PaymentMethod, o.PaymentStatus, o.Payment.GatewayOrderID, o.Payment.PaymentID,
		o.Status, o.TrackingNumber, o.Notes, o.CancellationReason,
		o.EstimatedDelivery, o.ActualDelivery, o.CreatedAt, o.UpdatedAt,
		o.Payment.Signature,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert order: duplicate order_number=%s or gateway order: %w", o.OrderNumber, err)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	// 2) order_items через COPY
	if len(o.Items) > 0 {
		if err = copyOrderItems(ctx, transaction, o.OrderNumber, o.Items); err != nil {
			return err
		}
	}

	// 3) история статусов
	if err = insertHistory(ctx, transaction, o.OrderNumber, domain.StatusChange{
		Status: o.Status, Note: "order placed", ChangedAt: o.CreatedAt,
	}); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByNumber — заказ целиком (позиции и история). Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	order, err := pgx.CollectOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.itemsFor(ctx, []string{number})
	if err != nil {
		return nil, err
	}
	order.Items = items[number]

	// история (1..N)
	hRows, err := r.pool.Query(ctx, `
		SELECT status, note, changed_at
		FROM order_status_history
		WHERE order_number = $1
		ORDER BY changed_at, id
	`, number)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	order.History, err = pgx.CollectRows(hRows, func(row pgx.CollectableRow) (domain.StatusChange, error) {
		var h domain.StatusChange
		err := row.Scan(&h.Status, &h.Note, &h.ChangedAt)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return order, nil
}

// UpdateStatus — смена статуса при условии, что текущий статус равен change.From.
// Конкурентное изменение (статус уже другой) — domain.ErrOrderState.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number string, change domain.OrderStatusChange) error {
	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, transaction)

	tag, err := transaction.Exec(ctx, `
		UPDATE orders SET
			status = $3,
			tracking_number = COALESCE(NULLIF($4::text, ''), tracking_number),
			cancellation_reason = COALESCE(NULLIF($5::text, ''), cancellation_reason),
			actual_delivery = CASE WHEN $3 = 'delivered' THEN $6::timestamptz ELSE actual_delivery END,
			updated_at = $6
		WHERE order_number = $1 AND status = $2
	`, number, change.From, change.To, change.TrackingNumber, change.CancellationReason, change.At)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order=%s is no longer %s", domain.ErrOrderState, number, change.From)
	}

	if err = insertHistory(ctx, transaction, number, domain.StatusChange{
		Status: change.To, Note: change.Note, ChangedAt: change.At,
	}); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MarkPaid — отмечает оплату заказа по ID заказа платёжного шлюза; ожидающий заказ подтверждается.
// Возвращает номер заказа; пустая строка — заказа с таким gatewayOrderID нет. Повторный вызов ничего не меняет.
func (r *OrderRepository) MarkPaid(ctx context.Context, gatewayOrderID string, payment domain.OrderPayment, at time.Time) (string, error) {
	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer rollback(ctx, transaction)

	var (
		number        string
		status        domain.OrderStatus
		paymentStatus domain.PaymentStatus
	)
	err = transaction.QueryRow(ctx, `
		SELECT order_number, status, payment_status
		FROM orders
		WHERE gateway_order_id = $1
		FOR UPDATE
	`, gatewayOrderID).Scan(&number, &status, &paymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select order by gateway id: %w", err)
	}
	if paymentStatus == domain.PaymentCompleted {
		return number, nil
	}

	next := status
	if status == domain.OrderPending {
		next = domain.OrderConfirmed
	}
	if _, err = transaction.Exec(ctx, `
		UPDATE orders SET
			payment_status = 'completed',
			gateway_payment_id = $2,
			gateway_signature = $3,
			status = $4,
			updated_at = $5
		WHERE order_number = $1
	`, number, payment.PaymentID, payment.Signature, next, at); err != nil {
		return "", fmt.Errorf("update order payment: %w", err)
	}

	if next != status {
		if err = insertHistory(ctx, transaction, number, domain.StatusChange{
			Status: next, Note: "payment received", ChangedAt: at,
		}); err != nil {
			return "", err
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return number, nil
}

// List — страница заказов для администратора, новые первыми.
// Два запроса на страницу: базовые записи и позиции пачкой по ANY($1).
func (r *OrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC, order_number DESC
		LIMIT $2 OFFSET $3
	`, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	numbers := make([]string, len(orders))
	for i, o := range orders {
		numbers[i] = o.OrderNumber
	}
	items, err := r.itemsFor(ctx, numbers)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.OrderNumber]
	}
	return orders, nil
}

// itemsFor — позиции для набора заказов (сбор в map по номеру).
func (r *OrderRepository) itemsFor(ctx context.Context, numbers []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_number, product_id, name, price, quantity, sku
		FROM order_items
		WHERE order_number = ANY($1::text[])
		ORDER BY order_number, id
	`, numbers)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	byNumber := make(map[string][]domain.OrderItem, len(numbers))
	for rows.Next() {
		var number string
		var item domain.OrderItem
		if err := rows.Scan(&number, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.SKU); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		byNumber[number] = append(byNumber[number], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("items rows: %w", err)
	}
	return byNumber, nil
}

func scanOrder(row pgx.CollectableRow) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.OrderNumber, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode, &o.ShippingAddress.Country, &o.ShippingAddress.Phone,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
		&o.PaymentMethod, &o.PaymentStatus, &o.Payment.GatewayOrderID, &o.Payment.PaymentID,
		&o.Status, &o.TrackingNumber, &o.Notes, &o.CancellationReason,
		&o.EstimatedDelivery, &o.ActualDelivery, &o.CreatedAt, &o.UpdatedAt,
	)
	return &o, err
}

// copyOrderItems — вставка позиций через COPY (CopyFromRows).
func copyOrderItems(ctx context.Context, tx pgx.Tx, number string, items []domain.OrderItem) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{number, item.ProductID, item.Name, item.Price, item.Quantity, item.SKU})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_number", "product_id", "name", "price", "quantity", "sku"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, number string, h domain.StatusChange) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_number, status, note, changed_at)
		VALUES ($1, $2, $3, $4)
	`, number, h.Status, h.Note, h.ChangedAt); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// rollback — при уже завершённой транзакции Rollback вернёт ErrTxClosed, его игнорируем.
func rollback(ctx context.Context, tx pgx.Tx) {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		_ = rbErr
	}
}
