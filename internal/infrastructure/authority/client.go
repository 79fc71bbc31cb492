// Package authority implements the HTTP gateway to the remote store holding
// the canonical user, product, and order records, plus the normalization
// between its wire records and domain entities.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minimart/storefront-sync/internal/api/metrics"
	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
)

// maxResponseBytes bounds authority response bodies to prevent memory
// exhaustion on a misbehaving upstream.
const maxResponseBytes = 4 << 20

// Client is the HTTP implementation of ports.AuthorityGateway. It constructs
// requests and decodes responses; it carries no reconciliation logic.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.AuthorityGateway = (*Client)(nil)

func (c *Client) GetOrCreateUser(ctx context.Context, in ports.UserUpsertInput) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, "get_or_create_user", http.MethodPost, "/users", encodeUserInput(in), &w); err != nil {
		return nil, err
	}
	u := decodeUser(w)
	return &u, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var ws []wireProduct
	if err := c.do(ctx, "list_products", http.MethodGet, "/products", nil, &ws); err != nil {
		return nil, err
	}
	return decodeProducts(ws), nil
}

func (c *Client) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	var w wireProduct
	if err := c.do(ctx, "create_product", http.MethodPost, "/products", encodeProductInput(in), &w); err != nil {
		return nil, err
	}
	p := decodeProduct(w)
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, "delete_product", http.MethodDelete, "/products/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	var ws []wireOrder
	if err := c.do(ctx, "list_all_orders", http.MethodGet, "/orders", nil, &ws); err != nil {
		return nil, err
	}
	return decodeOrders(ws), nil
}

func (c *Client) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var ws []wireOrder
	path := fmt.Sprintf("/users/%d/orders", userID)
	if err := c.do(ctx, "list_user_orders", http.MethodGet, path, nil, &ws); err != nil {
		return nil, err
	}
	return decodeOrders(ws), nil
}

func (c *Client) CreateOrder(ctx context.Context, in ports.OrderInput) (*domain.Order, error) {
	var w wireOrder
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", encodeOrderInput(in), &w); err != nil {
		return nil, err
	}
	o := decodeOrder(w)
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	return c.do(ctx, "update_order_status", http.MethodPatch, path, updateOrderStatusRequest{Status: string(status)}, nil)
}

// do performs one round trip. Transport failures, non-2xx statuses, and
// decode failures all wrap domain.ErrAuthorityUnavailable so callers can map
// the whole class with errors.Is.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authority: encode %s: %w", op, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("authority: build %s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("authority: %s: %v: %w", op, err, domain.ErrAuthorityUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		c.log.Debug().Str("operation", op).Int("status", resp.StatusCode).Msg("authority call rejected")
		return fmt.Errorf("authority: %s: unexpected status %d: %w", op, resp.StatusCode, domain.ErrAuthorityUnavailable)
	}

	metrics.GatewayRequestsTotal.WithLabelValues(op, "ok").Inc()

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("authority: read %s: %v: %w", op, err, domain.ErrAuthorityUnavailable)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("authority: decode %s: %v: %w", op, err, domain.ErrAuthorityUnavailable)
	}
	return nil
}
