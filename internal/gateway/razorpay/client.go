// Пакет razorpay — клиент REST API платёжного шлюза Razorpay (создание заказов, проверка подписи).
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// Проверка, что Client удовлетворяет интерфейсу ports.PaymentGateway.
var _ ports.PaymentGateway = (*Client)(nil)

// DefaultBaseURL — публичный endpoint API.
const DefaultBaseURL = "https://api.razorpay.com"

const maxResponseBytes = 1 << 20

// APIError — ответ шлюза со статусом вне 2xx.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: status %d: %s: %s", e.Status, e.Code, e.Description)
}

// Client — клиент Razorpay с basic-auth по паре key_id/key_secret.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewClient — конструктор. Пустой baseURL — DefaultBaseURL, nil httpClient — клиент с таймаутом 15s.
func NewClient(baseURL, keyID, keySecret string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      httpClient,
	}
}

// CreateOrder — POST /v1/orders.
func (c *Client) CreateOrder(ctx context.Context, req domain.PaymentOrderRequest) (*domain.PaymentOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay: marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		observe("create_order", "error", start)
		return nil, fmt.Errorf("razorpay: request failed: %w", err)
	}
	defer resp.Body.Close()
	observe("create_order", strconv.Itoa(resp.StatusCode), start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("razorpay: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	var order domain.PaymentOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse order: %w", err)
	}
	return &order, nil
}

// parseAPIError — тело вида {"error":{"code":"...","description":"..."}}; иначе текст как есть.
func parseAPIError(status int, raw []byte) *APIError {
	var payload struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if json.Unmarshal(raw, &payload) == nil && payload.Error.Code != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Description = payload.Error.Description
		return apiErr
	}
	apiErr.Code = http.StatusText(status)
	apiErr.Description = strings.TrimSpace(string(raw))
	return apiErr
}

func observe(op, status string, start time.Time) {
	metrics.GatewayRequestDuration.WithLabelValues("razorpay", op, status).Observe(time.Since(start).Seconds())
}
