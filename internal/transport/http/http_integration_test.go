//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports/mocks"
	pgrepo "github.com/Gunvolt24/checkout_gateway/internal/repo/postgres"
	"github.com/Gunvolt24/checkout_gateway/internal/testutil"
	rest "github.com/Gunvolt24/checkout_gateway/internal/transport/http"
	"github.com/Gunvolt24/checkout_gateway/internal/usecase"
	"github.com/Gunvolt24/checkout_gateway/pkg/httpx"
	"github.com/Gunvolt24/checkout_gateway/pkg/logger"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// 1) GET /api/v1/products/:id — 200 из БД, повтор — из кэша ответов; 404 когда товара нет
func TestHTTP_GetProduct_TC(t *testing.T) {
	ctx, repo, ts := newCatalogServer(t)

	p := testutil.MakeProduct()
	require.NoError(t, repo.Create(ctx, &p))

	first := httpGet(t, ts.URL+"/api/v1/products/"+p.ID)
	require.Equal(t, http.StatusOK, first.status)
	require.Equal(t, "MISS", first.header.Get(httpx.HeaderXCache))

	var got domain.Product
	require.NoError(t, json.Unmarshal(first.body, &got))
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, p.SKU, got.SKU)

	second := httpGet(t, ts.URL+"/api/v1/products/"+p.ID)
	require.Equal(t, http.StatusOK, second.status)
	require.Equal(t, "HIT", second.header.Get(httpx.HeaderXCache))
	require.Equal(t, first.body, second.body)

	missing := httpGet(t, ts.URL+"/api/v1/products/not-existing-id")
	require.Equal(t, http.StatusNotFound, missing.status)

	var errBody map[string]any
	require.NoError(t, json.Unmarshal(missing.body, &errBody))
	require.Equal(t, "product not found", errBody["error"])
}

// 2) GET /api/v1/products — пагинация (limit/offset) и фильтр по категории
func TestHTTP_ListProducts_Pagination_TC(t *testing.T) {
	ctx, repo, ts := newCatalogServer(t)

	for i := 0; i < 3; i++ {
		p := testutil.MakeProduct(testutil.WithCategory(domain.CategoryTea))
		require.NoError(t, repo.Create(ctx, &p))
	}
	other := testutil.MakeProduct(testutil.WithCategory(domain.CategoryTube))
	require.NoError(t, repo.Create(ctx, &other))

	resp := httpGet(t, ts.URL+fmt.Sprintf("/api/v1/products?category=%s&limit=2&offset=1", domain.CategoryTea))
	require.Equal(t, http.StatusOK, resp.status)

	var page struct {
		Products []domain.Product `json:"products"`
		Count    int              `json:"count"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(resp.body, &page))
	require.Len(t, page.Products, 2)
	require.Equal(t, 2, page.Count)
	require.Equal(t, 2, page.Limit)
	require.Equal(t, 1, page.Offset)
	for _, p := range page.Products {
		require.Equal(t, domain.CategoryTea, p.Category)
	}
}

// 3) Создание товара через admin-API сбрасывает закэшированный список
func TestHTTP_CreateProduct_InvalidatesCachedList_TC(t *testing.T) {
	ctx, repo, ts := newCatalogServer(t)

	seed := testutil.MakeProduct()
	require.NoError(t, repo.Create(ctx, &seed))

	listURL := ts.URL + "/api/v1/products"
	require.Equal(t, "MISS", httpGet(t, listURL).header.Get(httpx.HeaderXCache))
	require.Equal(t, "HIT", httpGet(t, listURL).header.Get(httpx.HeaderXCache))

	fresh := testutil.MakeProduct(testutil.WithName("Kesar Mango Tube"))
	raw, err := json.Marshal(fresh)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listURL, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+integrationAdminToken)
	created, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	after := httpGet(t, listURL)
	require.Equal(t, "MISS", after.header.Get(httpx.HeaderXCache))

	var page struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(after.body, &page))
	require.Equal(t, 2, page.Count)
}

// 4) Таймаут обработчика: медленный сервис — 504, ответ не кэшируется
func TestHTTP_GetProduct_Timeout_504_TC(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	ctrl := gomock.NewController(t)
	slow := mocks.NewMockProductService(ctrl)
	slow.EXPECT().GetProduct(gomock.Any(), "any").
		DoAndReturn(func(ctx context.Context, _ string) (*domain.Product, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Times(2)

	store, err := cachemem.NewStore(10, time.Minute)
	require.NoError(t, err)

	h := rest.NewHandler(slow, mocks.NewMockCheckoutService(ctrl), nil, store, logg, 10*time.Millisecond)
	ts := httptest.NewServer(rest.NewRouter(h, rest.RouterOptions{}))
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp := httpGet(t, ts.URL+"/api/v1/products/any")
		require.Equal(t, http.StatusGatewayTimeout, resp.status)

		var got map[string]any
		require.NoError(t, json.Unmarshal(resp.body, &got))
		require.Equal(t, "request timeout", got["error"])
	}
	require.Zero(t, store.Size())
}

// --- функции помощники ---

const integrationAdminToken = "itc-admin"

// newCatalogServer — Postgres в контейнере, настоящий сервис каталога и HTTP-сервер поверх роутера.
func newCatalogServer(t *testing.T) (context.Context, *pgrepo.ProductRepository, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	t.Cleanup(cancel)

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	store, err := cachemem.NewStore(100, time.Minute, cachemem.WithLogger(logg))
	require.NoError(t, err)

	repo := pgrepo.NewProductRepository(pg.Pool)
	svc := usecase.NewProductService(repo, store, logg, validate.NewProductValidator(), time.Minute)

	ctrl := gomock.NewController(t)
	h := rest.NewHandler(svc, mocks.NewMockCheckoutService(ctrl), nil, store, logg, 2*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, rest.RouterOptions{
		AdminToken:           integrationAdminToken,
		ResponseTTL:          time.Minute,
		ResponseMaxBodyBytes: 1 << 20,
	}))
	t.Cleanup(ts.Close)

	return ctx, repo, ts
}

type httpResult struct {
	status int
	header http.Header
	body   []byte
}

// httpGet — GET и чтение тела целиком.
func httpGet(t *testing.T, url string) httpResult {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return httpResult{status: resp.StatusCode, header: resp.Header, body: b}
}
