package payments

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/config"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/logger"
	"github.com/chocobliss/storefront-backend/pkg/razorpay"
)

// providerClient is the slice of the Razorpay wrapper the gateway needs.
type providerClient interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.Order, error)
	VerifySignature(providerOrderID, providerPaymentID, signature string) bool
}

// Service fronts the payment provider. A service built without credentials
// stays up but rejects every operation with a dependency error, so the rest
// of the API keeps serving.
type Service interface {
	Configured() bool
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResponse, error)
	Verify(ctx context.Context, input VerifyInput) (*VerifyResponse, error)
}

type service struct {
	client providerClient
	keyID  string
	logg   *logger.Logger
}

// NewService builds the payment gateway. A nil client means the provider is
// not configured.
func NewService(client *razorpay.Client, cfg config.RazorpayConfig, logg *logger.Logger) Service {
	svc := &service{keyID: cfg.KeyID, logg: logg}
	if client != nil {
		svc.client = client
	}
	return svc
}

func (s *service) Configured() bool {
	return s.client != nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResponse, error) {
	if s.client == nil {
		return nil, errNotConfigured()
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	order, err := s.client.CreateOrder(ctx, razorpay.OrderCreateParams{
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
	})
	if err != nil {
		return nil, err
	}

	return &CreateOrderResponse{
		Success:  true,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.keyID,
	}, nil
}

// Verify checks the client-supplied confirmation against the provider secret.
// A failed check is a validation error, never an internal one; nothing about
// the expected digest leaks to the caller.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResponse, error) {
	if s.client == nil {
		return nil, errNotConfigured()
	}
	if strings.TrimSpace(input.OrderID) == "" ||
		strings.TrimSpace(input.PaymentID) == "" ||
		strings.TrimSpace(input.Signature) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}

	if !s.client.VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		if s.logg != nil {
			logCtx := s.logg.WithField(ctx, "provider_order_id", input.OrderID)
			s.logg.Warn(logCtx, "payments.verification_failed")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment verification failed")
	}

	return &VerifyResponse{Success: true, Message: "payment verified"}, nil
}

func errNotConfigured() error {
	return pkgerrors.New(pkgerrors.CodeDependency, "payment service not configured")
}

// MinorUnits re-exports the provider conversion for callers that present
// amounts to the payment widget.
func MinorUnits(amount decimal.Decimal) int64 {
	return razorpay.MinorUnits(amount)
}
