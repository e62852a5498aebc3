package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	"github.com/chocobliss/storefront-backend/pkg/types"
)

// Actor identifies who is performing an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// ListFilters narrows an order listing. A nil UserID means no owner filter.
type ListFilters struct {
	UserID *uuid.UUID
}

// LineItemResponse is an order line snapshot on the wire.
type LineItemResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Size      *string         `json:"size,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the public order representation.
type OrderResponse struct {
	ID                uuid.UUID               `json:"id"`
	UserID            uuid.UUID               `json:"userId"`
	Items             []LineItemResponse      `json:"items"`
	TotalAmount       decimal.Decimal         `json:"totalAmount"`
	ShippingAddress   types.Address           `json:"shippingAddress"`
	PaymentMethod     enums.PaymentMethod     `json:"paymentMethod"`
	PaymentStatus     enums.PaymentStatus     `json:"paymentStatus"`
	PaymentID         *string                 `json:"paymentId,omitempty"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillmentStatus"`
	CreatedAt         time.Time               `json:"createdAt"`
}

// OrderList is a cursor-paginated page of orders.
type OrderList struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor *string         `json:"nextCursor,omitempty"`
}

// ToOrderResponse maps an order model onto the wire shape.
func ToOrderResponse(order models.Order) OrderResponse {
	resp := OrderResponse{
		ID:                order.ID,
		UserID:            order.UserID,
		Items:             []LineItemResponse{},
		TotalAmount:       order.TotalAmount,
		ShippingAddress:   order.ShippingAddress,
		PaymentMethod:     order.PaymentMethod,
		PaymentStatus:     order.PaymentStatus,
		PaymentID:         order.PaymentID,
		FulfillmentStatus: order.FulfillmentStatus,
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}
