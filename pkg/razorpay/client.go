package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/config"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/logger"
)

const (
	ordersPath      = "/v1/orders"
	defaultCurrency = "INR"
)

var (
	errCredentialsRequired = errors.New("razorpay key id and secret are required")
	errLoggerRequired      = errors.New("razorpay logger is required")
)

// ErrNotConfigured marks a gateway running without provider credentials.
var ErrNotConfigured = errors.New("razorpay client not configured")

// Order is the provider-side payment intent handle.
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderCreateParams carries the inputs for provider order creation. Amount is
// in major units; the client converts to minor units on the wire.
type OrderCreateParams struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client exposes Razorpay primitives with centralized auth, logging, and
// error mapping.
type Client struct {
	httpClient httpDoer
	keyID      string
	keySecret  string
	baseURL    string
	logger     *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if !cfg.Configured() {
		return nil, errCredentialsRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		keyID:      strings.TrimSpace(cfg.KeyID),
		keySecret:  strings.TrimSpace(cfg.KeySecret),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// NewReceipt returns a unique receipt reference for provider orders.
func (c *Client) NewReceipt() string {
	return fmt.Sprintf("receipt_%s", uuid.NewString())
}

// CreateOrder registers a payment intent with the provider. The amount is
// converted to minor units (paise) before submission.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ErrNotConfigured, "payment service not configured")
	}

	currency := strings.TrimSpace(params.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := params.Receipt
	if receipt == "" {
		receipt = c.NewReceipt()
	}

	minorUnits := MinorUnits(params.Amount)
	if minorUnits <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	body, err := json.Marshal(map[string]any{
		"amount":   minorUnits,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode provider order request")
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   minorUnits,
		"currency": currency,
		"receipt":  receipt,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build provider order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create payment order")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("razorpay order create returned status %d", resp.StatusCode)
		c.log(ctx, "error", "create_order", map[string]any{
			"error":  err.Error(),
			"status": resp.StatusCode,
		})
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create payment order")
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode provider order")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"provider_order_id": order.ID,
		"status":            order.Status,
	})
	return &order, nil
}

// VerifySignature checks a client-supplied payment confirmation against the
// server-held secret. The digest comparison is constant-time; the check is
// pure and performs no network I/O.
func (c *Client) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifySignature(c.keySecret, providerOrderID, providerPaymentID, signature)
}

// VerifySignature reports whether signature equals the hex-encoded
// HMAC-SHA256 of "orderID|paymentID" under the given secret.
func VerifySignature(secret, providerOrderID, providerPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MinorUnits converts a major-unit amount to the provider's integer minor
// units (paise), rounding to the nearest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "signature", "token", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
