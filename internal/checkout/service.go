package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chocobliss/storefront-backend/internal/cart"
	"github.com/chocobliss/storefront-backend/internal/orders"
	"github.com/chocobliss/storefront-backend/internal/payments"
	"github.com/chocobliss/storefront-backend/pkg/db/models"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/logger"
	"github.com/chocobliss/storefront-backend/pkg/metrics"
	"github.com/chocobliss/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// cartReader is the slice of the cart service checkout consumes.
type cartReader interface {
	Items(ctx context.Context, userID uuid.UUID) ([]cart.Item, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// productResolver loads catalog products for price re-resolution.
type productResolver interface {
	ResolveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// paymentVerifier checks a provider payment confirmation.
type paymentVerifier interface {
	Verify(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResponse, error)
}

// Service places orders, either from the server-side cart or from an
// explicit list of requested lines.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
	PlaceOrder(ctx context.Context, input DirectInput) (*Result, error)
}

type service struct {
	cart     cartReader
	products productResolver
	payments paymentVerifier
	repo     orders.Repository
	tx       txRunner
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService builds the checkout orchestrator with the required dependencies.
func NewService(
	cartSvc cartReader,
	products productResolver,
	paymentSvc paymentVerifier,
	repo orders.Repository,
	tx txRunner,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if paymentSvc == nil {
		return nil, fmt.Errorf("payment service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		cart:     cartSvc,
		products: products,
		payments: paymentSvc,
		repo:     repo,
		tx:       tx,
		metrics:  checkoutMetrics,
		logg:     logg,
	}, nil
}

// Checkout converts the user's cart into an order. Prices are re-resolved
// from the catalog at this moment and snapshotted onto the order; the cart is
// cleared only after the order transaction commits.
func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	result, err := s.checkout(ctx, input)
	s.observe(err)
	return result, err
}

func (s *service) checkout(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	items, err := s.cart.Items(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order, err := s.place(ctx, input.UserID, items, input.ShippingAddress, input.PaymentMethod, input.Payment)
	if err != nil {
		// The cart is intact; the buyer can retry.
		return nil, err
	}

	// Best-effort: the order exists either way, and a stale cart is
	// recoverable by the user.
	if err := s.cart.Clear(ctx, input.UserID); err != nil && s.logg != nil {
		logCtx := s.logg.WithField(ctx, "order_id", order.ID.String())
		s.logg.Error(logCtx, "checkout.cart_clear_failed", err)
	}

	return &Result{Order: orders.ToOrderResponse(*order)}, nil
}

// PlaceOrder creates an order directly from the requested lines. The cart is
// not consulted and not cleared; prices still come from the catalog.
func (s *service) PlaceOrder(ctx context.Context, input DirectInput) (*Result, error) {
	result, err := s.placeOrder(ctx, input)
	s.observe(err)
	return result, err
}

func (s *service) placeOrder(ctx context.Context, input DirectInput) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	items := make([]cart.Item, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		items = append(items, cart.Item{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.place(ctx, input.UserID, items, input.ShippingAddress, input.PaymentMethod, input.Payment)
	if err != nil {
		return nil, err
	}
	return &Result{Order: orders.ToOrderResponse(*order)}, nil
}

// place resolves the lines against the catalog, verifies the payment
// confirmation when one is required, and persists the order in one
// transaction.
func (s *service) place(
	ctx context.Context,
	userID uuid.UUID,
	items []cart.Item,
	shippingAddress types.Address,
	method enums.PaymentMethod,
	payment *PaymentConfirmation,
) (*models.Order, error) {
	lineItems, total, err := s.buildLines(ctx, items)
	if err != nil {
		return nil, err
	}

	paymentStatus := enums.PaymentStatusPending
	var paymentID *string
	if method == enums.PaymentMethodRazorpay {
		if payment == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment confirmation required")
		}
		if _, err := s.payments.Verify(ctx, payments.VerifyInput{
			OrderID:   payment.OrderID,
			PaymentID: payment.PaymentID,
			Signature: payment.Signature,
		}); err != nil {
			return nil, err
		}
		paymentStatus = enums.PaymentStatusPaid
		pid := payment.PaymentID
		paymentID = &pid
	}

	order := &models.Order{
		UserID:            userID,
		Items:             lineItems,
		TotalAmount:       total,
		ShippingAddress:   shippingAddress,
		PaymentMethod:     method,
		PaymentStatus:     paymentStatus,
		PaymentID:         paymentID,
		FulfillmentStatus: enums.FulfillmentStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":       order.ID.String(),
			"total_amount":   total.String(),
			"payment_method": method.String(),
			"line_items":     len(lineItems),
		})
		s.logg.Info(logCtx, "checkout.order_placed")
	}

	return order, nil
}

// buildLines snapshots catalog prices onto order lines.
func (s *service) buildLines(ctx context.Context, items []cart.Item) ([]models.OrderLineItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	byID, err := s.products.ResolveProducts(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	lineItems := make([]models.OrderLineItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order references a product that no longer exists").
				WithDetails(map[string]any{"productId": item.ProductID.String()})
		}
		if !product.InStock {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is out of stock", product.Name))
		}
		if item.Quantity < 1 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}

		unitPrice := product.EffectivePrice(item.Size)
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      item.Size,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	return lineItems, total, nil
}

func (s *service) observe(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeValidation:
				outcome = "rejected"
			case pkgerrors.CodeDependency:
				outcome = "dependency"
			}
		}
	}
	s.metrics.IncOutcome(outcome)
}
