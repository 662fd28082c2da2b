// Пакет shiprocket — прокси к API доставки Shiprocket.
// Тела запросов и ответов передаются без преобразования; токен авторизации живёт в кэше.
package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
)

// Проверка, что Client удовлетворяет интерфейсу ports.ShippingGateway.
var _ ports.ShippingGateway = (*Client)(nil)

const (
	// DefaultBaseURL — публичный endpoint внешнего API.
	DefaultBaseURL = "https://apiv2.shiprocket.in/v1/external"
	// TokenCacheKey — ключ токена в кэше.
	TokenCacheKey = "shiprocket:token"
	// TokenTTL — токен выдаётся на 24 часа, обновляем с запасом.
	TokenTTL = 23 * time.Hour

	maxResponseBytes = 4 << 20
)

// ErrInvalidResponse — шлюз вернул не-JSON.
var ErrInvalidResponse = errors.New("shiprocket: invalid response")

// APIError — ответ со статусом вне 2xx.
type APIError struct {
	Status  int
	Message string
	Body    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("shiprocket: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("shiprocket: status %d", e.Status)
}

// Client — клиент Shiprocket.
type Client struct {
	baseURL  string
	email    string
	password string
	cache    ports.Cache
	http     *http.Client

	// loginMu — не логинимся параллельно при холодном кэше.
	loginMu sync.Mutex
}

// NewClient — конструктор. Пустой baseURL — DefaultBaseURL, nil httpClient — клиент с таймаутом 20s.
func NewClient(baseURL, email, password string, cache ports.Cache, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		cache:    cache,
		http:     httpClient,
	}
}

// CreateOrder — POST /orders/create/adhoc.
func (c *Client) CreateOrder(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.call(ctx, "create_order", http.MethodPost, "/orders/create/adhoc", payload)
}

// Track — GET /courier/track/awb/{awb}.
func (c *Client) Track(ctx context.Context, awb string) (json.RawMessage, error) {
	return c.call(ctx, "track", http.MethodGet, "/courier/track/awb/"+url.PathEscape(awb), nil)
}

// call — запрос с токеном; на 401 токен сбрасывается и запрос повторяется один раз.
func (c *Client) call(ctx context.Context, op, method, path string, body []byte) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}

		status, raw, err := c.send(ctx, op, method, path, token, body)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized && attempt == 0 {
			c.cache.Delete(TokenCacheKey)
			continue
		}
		if status < 200 || status >= 300 {
			return nil, newAPIError(status, raw)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: %s %s", ErrInvalidResponse, method, path)
		}
		return raw, nil
	}
}

// token — из кэша либо через POST /auth/login.
func (c *Client) token(ctx context.Context) (string, error) {
	if tok, ok := c.cachedToken(); ok {
		return tok, nil
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	// пока ждали блокировку, токен мог получить другой запрос
	if tok, ok := c.cachedToken(); ok {
		return tok, nil
	}

	creds, _ := json.Marshal(map[string]string{"email": c.email, "password": c.password})
	status, raw, err := c.send(ctx, "login", http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("login failed: %w", newAPIError(status, raw))
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Token == "" {
		return "", fmt.Errorf("%w: login response without token", ErrInvalidResponse)
	}

	c.cache.Set(TokenCacheKey, payload.Token, TokenTTL)
	return payload.Token, nil
}

func (c *Client) cachedToken() (string, bool) {
	v, ok := c.cache.Get(TokenCacheKey)
	if !ok {
		return "", false
	}
	tok, ok := v.(string)
	return tok, ok && tok != ""
}

// send — один HTTP-вызов; ошибкой считается только транспортная проблема.
func (c *Client) send(ctx context.Context, op, method, path, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("shiprocket: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observe(op, "error", start)
		return 0, nil, fmt.Errorf("shiprocket: request failed: %w", err)
	}
	defer resp.Body.Close()
	observe(op, strconv.Itoa(resp.StatusCode), start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("shiprocket: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	if json.Valid(raw) {
		apiErr.Body = json.RawMessage(raw)
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

func observe(op, status string, start time.Time) {
	metrics.GatewayRequestDuration.WithLabelValues("shiprocket", op, status).Observe(time.Since(start).Seconds())
}
