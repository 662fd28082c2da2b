package razorpay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/gateway/razorpay"
)

func TestCreateOrder_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var req domain.PaymentOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(49900), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_123","entity":"order","amount":49900,"amount_paid":0,` +
			`"amount_due":49900,"currency":"INR","receipt":"r1","status":"created","attempts":0,"notes":{},"created_at":1700000000}`))
	}))
	defer srv.Close()

	client := razorpay.NewClient(srv.URL, "rzp_test_key", "secret", srv.Client())
	order, err := client.CreateOrder(context.Background(), domain.PaymentOrderRequest{
		Amount: 49900, Currency: "INR", Receipt: "r1",
	})

	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(49900), order.AmountDue)
}

func TestCreateOrder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	client := razorpay.NewClient(srv.URL, "k", "s", srv.Client())
	_, err := client.CreateOrder(context.Background(), domain.PaymentOrderRequest{Amount: 1, Currency: "INR"})

	var apiErr *razorpay.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Description, "at least 100")
}

func TestCreateOrder_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := razorpay.NewClient(srv.URL, "k", "s", srv.Client())
	_, err := client.CreateOrder(context.Background(), domain.PaymentOrderRequest{Amount: 100})

	var apiErr *razorpay.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Description)
}

func TestCreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := razorpay.NewClient(url, "k", "s", nil)
	_, err := client.CreateOrder(context.Background(), domain.PaymentOrderRequest{Amount: 100})
	require.Error(t, err)

	var apiErr *razorpay.APIError
	assert.False(t, errors.As(err, &apiErr))
}
