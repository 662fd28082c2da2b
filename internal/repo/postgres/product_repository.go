package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// Проверка, что ProductRepository удовлетворяет интерфейсу ProductRepository.
var _ ports.ProductRepository = (*ProductRepository)(nil)

// uniqueViolation — SQLSTATE нарушения уникального индекса.
const uniqueViolation = "23505"

const productColumns = `id, name, description, price, category, stock, sku, is_featured, is_active, created_at, updated_at`

// ProductRepository — каталог товаров на Postgres (pgxpool).
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository — конструктор ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create — вставка нового товара. Дубликат ID или SKU — domain.ErrProductConflict.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return errors.New("product is empty or id is required")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.SKU,
		p.IsFeatured, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: id=%s sku=%s", domain.ErrProductConflict, p.ID, p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update — обновление активного товара; отсутствующий — domain.ErrProductNotFound.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return errors.New("product is empty or id is required")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET
			name = $2,
			description = $3,
			price = $4,
			category = $5,
			stock = $6,
			sku = $7,
			is_featured = $8,
			updated_at = $9
		WHERE id = $1 AND is_active
	`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.SKU, p.IsFeatured, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku=%s", domain.ErrProductConflict, p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s", domain.ErrProductNotFound, p.ID)
	}
	return nil
}

// SoftDelete — снимает товар с продажи (is_active=false). false — товар не найден или уже снят.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID — активный товар по ID; (nil, nil), если его нет.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND is_active
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}

	p, err := pgx.CollectOneRow(rows, scanProduct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

// List — страница активного каталога. Пустые поля фильтра не ограничивают выборку,
// Query ищется подстрокой (без учёта регистра) в названии и описании.
func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active
			AND ($1::text = '' OR category = $1::text)
			AND ($2::text = '' OR name ILIKE '%' || $2::text || '%' OR description ILIKE '%' || $2::text || '%')
			AND ($3::bigint = 0 OR price >= $3::bigint)
			AND ($4::bigint = 0 OR price <= $4::bigint)
		ORDER BY created_at DESC, id
		LIMIT $5 OFFSET $6
	`, f.Category, f.Query, f.MinPrice, f.MaxPrice, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return collectProducts(rows)
}

// Featured — витрина: активные товары с is_featured, новые первыми.
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		return []*domain.Product{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active AND is_featured
		ORDER BY updated_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select featured: %w", err)
	}
	return collectProducts(rows)
}

// HotIDs — ID для прогрева кэша: сначала витрина, затем недавно обновлённые.
func (r *ProductRepository) HotIDs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM products
		WHERE is_active
		ORDER BY is_featured DESC, updated_at DESC, id
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select hot ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan hot ids: %w", err)
	}
	return ids, nil
}

func scanProduct(row pgx.CollectableRow) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.SKU,
		&p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

func collectProducts(rows pgx.Rows) ([]*domain.Product, error) {
	list, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
