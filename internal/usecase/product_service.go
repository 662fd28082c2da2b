package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// Проверка, что ProductService удовлетворяет интерфейсу ports.ProductService.
var _ ports.ProductService = (*ProductService)(nil)

const (
	productKeyPrefix = "product:"
	// productsPattern — подстрока всех списочных ключей: memo-списков и кэшированных маршрутов /api/v1/products.
	productsPattern = "products"
	// catalogPattern — карточки и списки (product:*, products:*).
	catalogPattern = "product"
	// routePattern — кэш GET-ответов (ключи httpx.ResponseCache).
	routePattern = "route:"

	listNamespace     = "products:list"
	featuredNamespace = "products:featured"

	defaultListLimit = 20
	featuredLimit    = 8
)

// ProductCacheKey — ключ карточки товара в кэше.
func ProductCacheKey(id string) string { return productKeyPrefix + id }

// ProductService — каталог поверх репозитория; чтения мемоизированы в кэше,
// любые изменения инвалидируют карточку и все списки.
type ProductService struct {
	repo      ports.ProductRepository
	cache     ports.Cache
	log       ports.Logger
	validator ports.ProductValidator
	ttl       time.Duration

	getByID  func(context.Context, string) (*domain.Product, error)
	list     func(context.Context, domain.ProductFilter) ([]*domain.Product, error)
	featured func(context.Context, int) ([]*domain.Product, error)
}

// NewProductService — DI-конструктор. ttl <= 0 — TTL кэша по умолчанию.
func NewProductService(
	repo ports.ProductRepository,
	cache ports.Cache,
	log ports.Logger,
	validator ports.ProductValidator,
	ttl time.Duration,
) *ProductService {
	s := &ProductService{
		repo:      repo,
		cache:     cache,
		log:       log,
		validator: validator,
		ttl:       ttl,
	}
	s.getByID = memory.Memoize(cache, "product", ttl, s.loadProduct, memory.WithKeyFunc(ProductCacheKey))
	s.list = memory.Memoize(cache, listNamespace, ttl, repo.List)
	s.featured = memory.Memoize(cache, featuredNamespace, ttl, repo.Featured)
	return s
}

// GetProduct — карточка товара; отсутствующий товар — domain.ErrProductNotFound (не кэшируется).
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneProduct(p), nil
}

// ListProducts — страница каталога по фильтру.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Query = strings.TrimSpace(filter.Query)

	list, err := s.list(ctx, filter)
	if err != nil {
		s.log.Errorf(ctx, "repo.List failed filter=%+v err=%v", filter, err)
		return nil, err
	}
	return cloneProducts(list), nil
}

// FeaturedProducts — витрина.
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	list, err := s.featured(ctx, featuredLimit)
	if err != nil {
		s.log.Errorf(ctx, "repo.Featured failed err=%v", err)
		return nil, err
	}
	return cloneProducts(list), nil
}

// CreateProduct — валидация, сохранение, инвалидация списков.
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, fmt.Errorf("%w: товар не может быть nil", validate.ErrInvalidProduct)
	}
	p := cloneProduct(product)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.IsActive = true

	if err := s.validator.Validate(ctx, p); err != nil {
		s.log.Warnf(ctx, "validation failed product=%s err=%v", p.ID, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Errorf(ctx, "repo.Create failed product=%s err=%v", p.ID, err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, p.ID)
	s.log.Infof(ctx, "product created id=%s sku=%s", p.ID, p.SKU)
	return cloneProduct(p), nil
}

// UpdateProduct — полная замена полей товара по ID.
func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil || product.ID == "" {
		return nil, fmt.Errorf("%w: id обязателен", validate.ErrInvalidProduct)
	}
	p := cloneProduct(product)
	p.UpdatedAt = time.Now().UTC()

	if err := s.validator.Validate(ctx, p); err != nil {
		s.log.Warnf(ctx, "validation failed product=%s err=%v", p.ID, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Errorf(ctx, "repo.Update failed product=%s err=%v", p.ID, err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx, p.ID)
	s.log.Infof(ctx, "product updated id=%s", p.ID)
	return cloneProduct(p), nil
}

// DeleteProduct — снятие с продажи (soft delete).
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.SoftDelete failed product=%s err=%v", id, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: id=%s", domain.ErrProductNotFound, id)
	}

	s.invalidate(ctx, id)
	s.log.Infof(ctx, "product deleted id=%s", id)
	return nil
}

// HandleCatalogEvent — событие из Kafka (raw JSON): инвалидация по типу события.
// Невалидное событие — ошибка с validate.ErrInvalidEvent (повтор бессмыслен).
func (s *ProductService) HandleCatalogEvent(ctx context.Context, raw []byte) error {
	event, err := validate.ParseCatalogEvent(raw)
	if err != nil {
		s.log.Warnf(ctx, "catalog event rejected err=%v", err)
		return err
	}

	switch event.Type {
	case domain.EventCatalogFlush:
		// Только каталог: токен логистики, трекинг и заказы переживают flush.
		removed := s.cache.InvalidatePattern(catalogPattern) + s.cache.InvalidatePattern(routePattern)
		s.log.Infof(ctx, "catalog flush: %d cache entries removed", removed)
	default:
		s.invalidate(ctx, event.ProductID)
	}
	return nil
}

// WarmUpCache — прогрев кэша n самыми востребованными карточками.
// Если n <= 0, прогрев не выполняется (но это не ошибка). Ошибки отдельных ключей только логируются.
func (s *ProductService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	ids, err := s.repo.HotIDs(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.HotIDs failed n=%d err=%v", n, err)
		return err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductCacheKey(id)
	}
	results := s.cache.WarmCache(ctx, keys, s.fetchForWarm, s.ttl)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		s.log.Warnf(ctx, "cache warm-up: %d of %d products failed", failed, len(results))
	}
	s.log.Infof(ctx, "cache warmed with %d products in %s", len(results)-failed, time.Since(start))
	return nil
}

func (s *ProductService) fetchForWarm(ctx context.Context, key string) (any, error) {
	return s.loadProduct(ctx, strings.TrimPrefix(key, productKeyPrefix))
}

// loadProduct — чтение из БД; nil от репозитория превращается в ErrProductNotFound.
func (s *ProductService) loadProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed product=%s err=%v", id, err)
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: id=%s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// invalidate — карточка товара и все списки (memo и кэш ответов).
func (s *ProductService) invalidate(ctx context.Context, id string) {
	if id != "" {
		s.cache.Delete(ProductCacheKey(id))
	}
	removed := s.cache.InvalidatePattern(productsPattern)
	s.log.Infof(ctx, "product cache invalidated id=%s list_entries=%d", id, removed)
}
