package checkout

import (
	"github.com/google/uuid"

	"github.com/chocobliss/storefront-backend/internal/orders"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	"github.com/chocobliss/storefront-backend/pkg/types"
)

// PaymentConfirmation is the provider handshake captured by the storefront
// after the buyer completes the payment widget.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Input carries everything needed to place an order. The items themselves
// come from the server-side cart, never from the request.
type Input struct {
	UserID          uuid.UUID
	ShippingAddress types.Address
	PaymentMethod   enums.PaymentMethod
	Payment         *PaymentConfirmation
}

// ItemInput identifies one requested line on a direct order.
type ItemInput struct {
	ProductID uuid.UUID
	Size      *string
	Quantity  int
}

// DirectInput places an order from caller-supplied lines. Unit prices are
// still resolved from the catalog, never taken from the request.
type DirectInput struct {
	UserID          uuid.UUID
	Items           []ItemInput
	ShippingAddress types.Address
	PaymentMethod   enums.PaymentMethod
	Payment         *PaymentConfirmation
}

// Result is the placed order.
type Result struct {
	Order orders.OrderResponse `json:"order"`
}
