// Package cartapi is a client for the upstream cart REST API.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

var (
	// ErrRejected is wrapped by every APIError
	ErrRejected = errors.New("cart API rejected the request")
	// ErrUnreachable is wrapped when no response was received
	ErrUnreachable = errors.New("cart API is unreachable")
)

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cart API returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrRejected
}

// Client calls the cart API. The cart session cookie set by the API is kept
// in a cookie jar and sent with later requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// AddItem sends POST /cart/items and returns the updated cart
func (c *Client) AddItem(ctx context.Context, intent domain.Intent) (*domain.Cart, error) {
	body, err := json.Marshal(intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart item: %w", err)
	}

	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/items", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart sends GET /cart
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Cart API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode cart API response: %w", err)
	}
	return nil
}
