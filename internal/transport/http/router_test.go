package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports/mocks"
	rest "github.com/Gunvolt24/checkout_gateway/internal/transport/http"
	"github.com/Gunvolt24/checkout_gateway/internal/usecase"
	"github.com/Gunvolt24/checkout_gateway/pkg/httpx"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

const adminToken = "s3cret"

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type testEnv struct {
	products *mocks.MockProductService
	checkout *mocks.MockCheckoutService
	orders   *mocks.MockOrderService
	store    *memory.Store
	router   *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	store, err := memory.NewStore(100, time.Minute)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	env := &testEnv{
		products: mocks.NewMockProductService(ctrl),
		checkout: mocks.NewMockCheckoutService(ctrl),
		orders:   mocks.NewMockOrderService(ctrl),
		store:    store,
	}
	h := rest.NewHandler(env.products, env.checkout, env.orders, store, noopLogger{}, time.Second)
	env.router = rest.NewRouter(h, rest.RouterOptions{
		AdminToken:           adminToken,
		ResponseTTL:          time.Minute,
		ResponseMaxBodyBytes: 1 << 20,
		MaxRequestBodyBytes:  1 << 20,
	})
	return env
}

func (e *testEnv) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func bearer() []string { return []string{"Authorization", "Bearer " + adminToken} }

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
}

func TestGetProduct_FoundThenCached(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().GetProduct(gomock.Any(), "p1").
		Return(&domain.Product{ID: "p1", Name: "Mango"}, nil).Times(1)

	first := env.do(http.MethodGet, "/api/v1/products/p1", "")
	if first.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", first.Code, first.Body.String())
	}
	if got := first.Header().Get(httpx.HeaderXCache); got != "MISS" {
		t.Fatalf("first X-Cache: want MISS, got %q", got)
	}

	second := env.do(http.MethodGet, "/api/v1/products/p1", "")
	if got := second.Header().Get(httpx.HeaderXCache); got != "HIT" {
		t.Fatalf("second X-Cache: want HIT, got %q", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached body differs: %s vs %s", second.Body.String(), first.Body.String())
	}

	var got domain.Product
	decode(t, second, &got)
	if got.ID != "p1" {
		t.Fatalf("wrong product: %+v", got)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().GetProduct(gomock.Any(), "missing").
		Return(nil, fmt.Errorf("%w: id=missing", domain.ErrProductNotFound)).Times(2)

	for i := 0; i < 2; i++ {
		w := env.do(http.MethodGet, "/api/v1/products/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
		}
	}
}

func TestGetProduct_InternalError(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().GetProduct(gomock.Any(), "boom").Return(nil, errors.New("db error"))

	w := env.do(http.MethodGet, "/api/v1/products/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d, body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "db error") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

func TestListProducts_FilterFromQuery(t *testing.T) {
	env := newEnv(t)

	want := domain.ProductFilter{Category: "tea", Query: "chai", MinPrice: 100, MaxPrice: 5000, Limit: 5, Offset: 10}
	env.products.EXPECT().ListProducts(gomock.Any(), want).
		Return([]*domain.Product{{ID: "a"}, {ID: "b"}}, nil)

	w := env.do(http.MethodGet, "/api/v1/products?category=Tea&q=chai&min_price=100&max_price=5000&limit=5&offset=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Products []domain.Product `json:"products"`
		Count    int              `json:"count"`
	}
	decode(t, w, &got)
	if got.Count != 2 || got.Products[1].ID != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListProducts_BadQuery(t *testing.T) {
	env := newEnv(t)

	for _, target := range []string{
		"/api/v1/products?category=shoes",
		"/api/v1/products?min_price=500&max_price=100",
	} {
		w := env.do(http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", target, w.Code)
		}
	}
}

func TestFeaturedProducts(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().FeaturedProducts(gomock.Any()).Return([]*domain.Product{{ID: "f1"}}, nil)

	w := env.do(http.MethodGet, "/api/v1/products/featured", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodPost, "/api/v1/products", `{"name":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestCreateProduct_Created(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Product) (*domain.Product, error) {
			if p.Name != "Masala Chai" || p.Price != 15000 {
				t.Fatalf("unexpected input: %+v", p)
			}
			out := *p
			out.ID = "new-id"
			return &out, nil
		})

	w := env.do(http.MethodPost, "/api/v1/products", `{"name":"Masala Chai","price":15000}`, bearer()...)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateProduct_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("validation failed: %w", validate.ErrInvalidProduct), http.StatusBadRequest},
		{"conflict", fmt.Errorf("failed to create product: %w", domain.ErrProductConflict), http.StatusConflict},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t)
			env.products.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			w := env.do(http.MethodPost, "/api/v1/products", `{"name":"x"}`, bearer()...)
			if w.Code != tc.want {
				t.Fatalf("want %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodPost, "/api/v1/products", `{"name":`, bearer()...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestUpdateProduct_AppliesPatch(t *testing.T) {
	env := newEnv(t)

	gomock.InOrder(
		env.products.EXPECT().GetProduct(gomock.Any(), "p1").
			Return(&domain.Product{ID: "p1", Name: "Mango", Price: 100, Stock: 5}, nil),
		env.products.EXPECT().UpdateProduct(gomock.Any(), &domain.Product{ID: "p1", Name: "Mango", Price: 250, Stock: 5}).
			DoAndReturn(func(_ context.Context, p *domain.Product) (*domain.Product, error) { return p, nil }),
	)

	w := env.do(http.MethodPatch, "/api/v1/products/p1", `{"price":250}`, bearer()...)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteProduct(t *testing.T) {
	env := newEnv(t)

	env.products.EXPECT().DeleteProduct(gomock.Any(), "p1").Return(nil)
	env.products.EXPECT().DeleteProduct(gomock.Any(), "p2").Return(domain.ErrProductNotFound)

	if w := env.do(http.MethodDelete, "/api/v1/products/p1", "", bearer()...); w.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", w.Code)
	}
	if w := env.do(http.MethodDelete, "/api/v1/products/p2", "", bearer()...); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestCreatePaymentOrder(t *testing.T) {
	env := newEnv(t)

	env.checkout.EXPECT().CreatePaymentOrder(gomock.Any(), domain.PaymentOrderRequest{Amount: 49900}).
		Return(&domain.PaymentOrder{ID: "order_1", Amount: 49900, Currency: "INR"}, nil)

	w := env.do(http.MethodPost, "/api/v1/payments/orders", `{"amount":49900}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.PaymentOrder
	decode(t, w, &got)
	if got.ID != "order_1" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestCreatePaymentOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", usecase.ErrInvalidPayment, http.StatusBadRequest},
		{"gateway", fmt.Errorf("%w: create payment order: %w", usecase.ErrGateway, errors.New("503")), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t)
			env.checkout.EXPECT().CreatePaymentOrder(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			w := env.do(http.MethodPost, "/api/v1/payments/orders", `{"amount":1}`)
			if w.Code != tc.want {
				t.Fatalf("want %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestVerifyPayment(t *testing.T) {
	env := newEnv(t)

	v := domain.PaymentVerification{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
	env.checkout.EXPECT().VerifyPayment(gomock.Any(), v).Return(true, nil)

	w := env.do(http.MethodPost, "/api/v1/payments/verify",
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Verified bool `json:"verified"`
	}
	decode(t, w, &got)
	if !got.Verified {
		t.Fatalf("want verified=true")
	}
}

func TestCreateOrder(t *testing.T) {
	env := newEnv(t)

	body := `{"items":[{"product_id":"p1","quantity":2}],
		"customer":{"name":"Asha Rao","email":"asha@example.com","phone":"+919800000000"},
		"shipping_address":{"street":"12 MG Road","city":"Pune","state":"MH","zip_code":"411001","phone":"+919800000000"},
		"payment_method":"online"}`
	env.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, d domain.OrderDraft) (*domain.Order, error) {
			if len(d.Items) != 1 || d.Items[0].Quantity != 2 || d.PaymentMethod != domain.PaymentOnline ||
				d.ShippingAddress.ZipCode != "411001" {
				t.Fatalf("unexpected draft: %+v", d)
			}
			return &domain.Order{
				OrderNumber: "CAO1",
				Status:      domain.OrderPending,
				Payment:     domain.OrderPayment{GatewayOrderID: "order_rzp_1"},
			}, nil
		})

	w := env.do(http.MethodPost, "/api/v1/orders", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.Order
	decode(t, w, &got)
	if got.OrderNumber != "CAO1" || got.Payment.GatewayOrderID != "order_rzp_1" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestOrders_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", fmt.Errorf("validation failed: %w", validate.ErrInvalidOrder), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: number=CAO1", domain.ErrOrderNotFound), http.StatusNotFound},
		{"state", fmt.Errorf("%w: shipped -> confirmed", domain.ErrOrderState), http.StatusConflict},
		{"gateway", fmt.Errorf("%w: create payment order: %w", usecase.ErrGateway, errors.New("503")), http.StatusBadGateway},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t)
			env.orders.EXPECT().GetOrder(gomock.Any(), "CAO1", "asha@example.com").Return(nil, tc.err)

			w := env.do(http.MethodGet, "/api/v1/orders/CAO1?email=asha@example.com", "")
			if w.Code != tc.want {
				t.Fatalf("want %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestTrackOrder(t *testing.T) {
	env := newEnv(t)

	env.orders.EXPECT().TrackOrder(gomock.Any(), "CAO1", "asha@example.com").Return(&domain.OrderTracking{
		OrderNumber: "CAO1",
		Status:      domain.OrderConfirmed,
		Timeline: []domain.TrackingStep{
			{Status: domain.OrderPending, Completed: true},
			{Status: domain.OrderConfirmed, Completed: true},
		},
	}, nil)

	w := env.do(http.MethodGet, "/api/v1/orders/CAO1/tracking?email=asha@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.OrderTracking
	decode(t, w, &got)
	if got.Status != domain.OrderConfirmed || len(got.Timeline) != 2 {
		t.Fatalf("unexpected tracking: %+v", got)
	}
	if w.Header().Get(httpx.HeaderXCache) != "" {
		t.Fatalf("order routes must bypass response cache")
	}
}

func TestCancelOrder(t *testing.T) {
	env := newEnv(t)

	env.orders.EXPECT().CancelOrder(gomock.Any(), "CAO1", "asha@example.com", "changed my mind").
		Return(&domain.Order{OrderNumber: "CAO1", Status: domain.OrderCancelled}, nil)
	env.orders.EXPECT().CancelOrder(gomock.Any(), "CAO2", "asha@example.com", "").
		Return(nil, fmt.Errorf("%w: order cannot be cancelled at this stage", domain.ErrOrderState))

	w := env.do(http.MethodPost, "/api/v1/orders/CAO1/cancel", `{"email":"asha@example.com","reason":"changed my mind"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/orders/CAO2/cancel", `{"email":"asha@example.com"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d, body=%s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/orders/CAO3/cancel", `{"email":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestAdminOrders(t *testing.T) {
	env := newEnv(t)

	if w := env.do(http.MethodGet, "/api/v1/admin/orders", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", w.Code)
	}

	env.orders.EXPECT().ListOrders(gomock.Any(), domain.OrderFilter{Status: domain.OrderPending, Limit: 5, Offset: 10}).
		Return([]*domain.Order{{OrderNumber: "CAO1"}}, nil)
	w := env.do(http.MethodGet, "/api/v1/admin/orders?status=Pending&limit=5&offset=10", "", bearer()...)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var page struct {
		Orders []domain.Order `json:"orders"`
	}
	decode(t, w, &page)
	if len(page.Orders) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	upd := domain.OrderStatusUpdate{Status: domain.OrderShipped, TrackingNumber: "AWB12345"}
	env.orders.EXPECT().UpdateStatus(gomock.Any(), "CAO1", upd).
		Return(&domain.Order{OrderNumber: "CAO1", Status: domain.OrderShipped, TrackingNumber: "AWB12345"}, nil)
	w = env.do(http.MethodPatch, "/api/v1/admin/orders/CAO1/status",
		`{"status":"shipped","tracking_number":"AWB12345"}`, bearer()...)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestShipping_Passthrough(t *testing.T) {
	env := newEnv(t)

	env.checkout.EXPECT().CreateShipment(gomock.Any(), json.RawMessage(`{"order_id":"o1"}`)).
		Return(json.RawMessage(`{"shipment_id":7}`), nil)
	env.checkout.EXPECT().TrackShipment(gomock.Any(), "AWB1").
		Return(json.RawMessage(`{"tracking_data":{}}`), nil)

	w := env.do(http.MethodPost, "/api/v1/shipping/orders", `{"order_id":"o1"}`)
	if w.Code != http.StatusOK || w.Body.String() != `{"shipment_id":7}` {
		t.Fatalf("create: code=%d body=%s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/v1/shipping/track/AWB1", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"tracking_data":{}}` {
		t.Fatalf("track: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminCache(t *testing.T) {
	env := newEnv(t)
	env.store.SetDefault("route:GET /api/v1/products?page=1", "x")
	env.store.SetDefault("product:p1", "y")
	env.store.Set("stale", "z", -time.Second)

	w := env.do(http.MethodGet, "/api/v1/admin/cache/stats", "", bearer()...)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: want 200, got %d", w.Code)
	}
	var stats struct {
		Size         int `json:"size"`
		MaxSize      int `json:"max_size"`
		ExpiredCount int `json:"expired_count"`
	}
	decode(t, w, &stats)
	if stats.Size != 3 || stats.MaxSize != 100 || stats.ExpiredCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	w = env.do(http.MethodPost, "/api/v1/admin/cache/cleanup", "", bearer()...)
	var cleaned struct {
		Removed int `json:"removed"`
	}
	decode(t, w, &cleaned)
	if cleaned.Removed != 1 {
		t.Fatalf("cleanup: want 1, got %d", cleaned.Removed)
	}

	w = env.do(http.MethodPost, "/api/v1/admin/cache/invalidate", `{"pattern":"products"}`, bearer()...)
	var inv struct {
		Removed int `json:"removed"`
	}
	decode(t, w, &inv)
	if inv.Removed != 1 || env.store.Has("route:GET /api/v1/products?page=1") {
		t.Fatalf("invalidate: removed=%d keys=%v", inv.Removed, env.store.Keys())
	}

	if w := env.do(http.MethodPost, "/api/v1/admin/cache/invalidate", `{"pattern":"  "}`, bearer()...); w.Code != http.StatusBadRequest {
		t.Fatalf("empty pattern: want 400, got %d", w.Code)
	}

	if w := env.do(http.MethodDelete, "/api/v1/admin/cache", "", bearer()...); w.Code != http.StatusOK {
		t.Fatalf("clear: want 200, got %d", w.Code)
	}
	if env.store.Size() != 0 {
		t.Fatalf("cache must be empty, keys=%v", env.store.Keys())
	}
}

func TestAdminCache_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, _ := memory.NewStore(10, time.Minute)
	h := rest.NewHandler(nil, nil, nil, store, noopLogger{}, 0)
	r := rest.NewRouter(h, rest.RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cache/stats", http.NoBody)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", w.Code)
	}
}

// Изменение каталога через API сбрасывает кэшированные ответы списков.
func TestProductMutation_InvalidatesCachedList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockProductRepository(ctrl)
	store, err := memory.NewStore(100, time.Minute)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc := usecase.NewProductService(repo, store, noopLogger{}, validate.NewProductValidator(), time.Minute)
	h := rest.NewHandler(svc, mocks.NewMockCheckoutService(ctrl), nil, store, noopLogger{}, time.Second)
	env := &testEnv{store: store, router: rest.NewRouter(h, rest.RouterOptions{AdminToken: adminToken})}

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*domain.Product{}, nil).Times(2)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	if w := env.do(http.MethodGet, "/api/v1/products", ""); w.Header().Get(httpx.HeaderXCache) != "MISS" {
		t.Fatalf("first list must be MISS")
	}
	if w := env.do(http.MethodGet, "/api/v1/products", ""); w.Header().Get(httpx.HeaderXCache) != "HIT" {
		t.Fatalf("second list must be HIT")
	}

	body := `{"name":"Masala Chai","description":"Spiced black tea blend","price":15000,"category":"tea","stock":4,"sku":"TEA-001"}`
	if w := env.do(http.MethodPost, "/api/v1/products", body, bearer()...); w.Code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d, body=%s", w.Code, w.Body.String())
	}

	if w := env.do(http.MethodGet, "/api/v1/products", ""); w.Header().Get(httpx.HeaderXCache) != "MISS" {
		t.Fatalf("list after create must be MISS")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodGet, "/ping", "", httpx.HeaderRequestID, "req-42")
	if got := w.Header().Get(httpx.HeaderRequestID); got != "req-42" {
		t.Fatalf("want echoed request id, got %q", got)
	}
}

func TestNoRoute_404(t *testing.T) {
	env := newEnv(t)

	if w := env.do(http.MethodGet, "/no-such-route", ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestMethodNotAllowed_405(t *testing.T) {
	env := newEnv(t)

	if w := env.do(http.MethodPut, "/api/v1/payments/verify", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", w.Code)
	}
}

func TestPingHealthMetrics_200(t *testing.T) {
	env := newEnv(t)

	for _, path := range []string{"/ping", "/health", "/metrics"} {
		w := env.do(http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want 200, got %d", path, w.Code)
		}
		if w.Body.Len() == 0 {
			t.Fatalf("%s: empty body", path)
		}
	}
}

func TestRateLimit_429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	store, _ := memory.NewStore(10, time.Minute)
	checkout := mocks.NewMockCheckoutService(ctrl)
	checkout.EXPECT().VerifyPayment(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	h := rest.NewHandler(mocks.NewMockProductService(ctrl), checkout, nil, store, noopLogger{}, 0)
	r := rest.NewRouter(h, rest.RouterOptions{RateLimitPerMinute: 1, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify",
			strings.NewReader(`{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("want [200 429], got %v", codes)
	}
}
