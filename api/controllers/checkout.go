package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/chocobliss/storefront-backend/api/responses"
	"github.com/chocobliss/storefront-backend/api/validators"
	checkoutsvc "github.com/chocobliss/storefront-backend/internal/checkout"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/logger"
	"github.com/chocobliss/storefront-backend/pkg/types"
)

type paymentConfirmationPayload struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type checkoutRequest struct {
	ShippingAddress types.Address               `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                      `json:"paymentMethod" validate:"required"`
	Payment         *paymentConfirmationPayload `json:"payment"`
}

// CheckoutCreate places an order from the caller's server-side cart.
func CheckoutCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := checkoutsvc.Input{
			UserID:          userID,
			ShippingAddress: payload.ShippingAddress,
			PaymentMethod:   method,
		}
		if payload.Payment != nil {
			input.Payment = &checkoutsvc.PaymentConfirmation{
				OrderID:   payload.Payment.OrderID,
				PaymentID: payload.Payment.PaymentID,
				Signature: payload.Payment.Signature,
			}
		}

		result, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type orderItemPayload struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      *string   `json:"size"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Items           []orderItemPayload          `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address               `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                      `json:"paymentMethod" validate:"required"`
	Payment         *paymentConfirmationPayload `json:"payment"`
}

// OrderCreate places an order from the request's lines. Unit prices are
// resolved from the catalog, never taken from the request.
func OrderCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := checkoutsvc.DirectInput{
			UserID:          userID,
			ShippingAddress: payload.ShippingAddress,
			PaymentMethod:   method,
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, checkoutsvc.ItemInput{
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
			})
		}
		if payload.Payment != nil {
			input.Payment = &checkoutsvc.PaymentConfirmation{
				OrderID:   payload.Payment.OrderID,
				PaymentID: payload.Payment.PaymentID,
				Signature: payload.Payment.Signature,
			}
		}

		result, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
