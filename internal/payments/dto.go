package payments

import "github.com/shopspring/decimal"

// CreateOrderInput registers a payment intent with the provider. Amount is in
// major currency units.
type CreateOrderInput struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

// CreateOrderResponse carries the provider order handle the storefront needs
// to open the payment widget.
type CreateOrderResponse struct {
	Success  bool   `json:"success"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// VerifyInput is the client-supplied payment confirmation.
type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyResponse reports the outcome of a signature check.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
