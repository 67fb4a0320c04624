package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

const (
	chargePath                 = "payments/charge"
	responseBodyReadLimit int64 = 1024
)

// PaymentRequest is the JSON body posted to every gateway. The amount
// is always a single vendor order's total, never the cart grand total.
type PaymentRequest struct {
	OrderID     uuid.UUID         `json:"order_id"`
	GatewayType string            `json:"gateway_type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    enums.Currency    `json:"currency"`
	ReturnURL   string            `json:"return_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentResult is the gateway's answer. Exactly one shape is expected:
// success, a redirect URL for browser verification, or an error string.
type PaymentResult struct {
	Success       bool    `json:"success"`
	RedirectURL   *string `json:"redirect_url,omitempty"`
	Error         *string `json:"error,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// Client posts charge requests to gateway endpoints. One client is
// shared by all adapters; each call carries its own base URL and
// bearer credential.
type Client struct {
	httpClient *http.Client
}

// ClientOption configures optional client behavior.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the shared gateway HTTP client.
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Charge posts the request to <baseURL>/payments/charge and decodes the
// gateway's verdict. Transport and non-2xx responses come back as
// DEPENDENCY_ERROR; a decoded {success:false} is NOT an error here, the
// dispatcher owns that taxonomy.
func (c *Client) Charge(ctx context.Context, baseURL, apiKey string, req PaymentRequest) (*PaymentResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway client not configured")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway base URL not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal charge request")
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), chargePath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute charge request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "charge request failed")
	}

	var result PaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge response")
	}
	return &result, nil
}
