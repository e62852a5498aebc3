package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemInput merges a line into the cart. Quantity adds onto any existing
// line with the same (ProductID, Size).
type AddItemInput struct {
	ProductID uuid.UUID
	Size      *string
	Quantity  int
}

// UpdateItemInput sets the exact quantity of an existing line.
type UpdateItemInput struct {
	ProductID uuid.UUID
	Size      *string
	Quantity  int
}

// RemoveItemInput identifies a line to remove.
type RemoveItemInput struct {
	ProductID uuid.UUID
	Size      *string
}

// ProductDetails is the catalog view joined onto a line at read time.
type ProductDetails struct {
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	InStock   bool            `json:"inStock"`
}

// LineResponse is a cart line joined against the live catalog. Product is
// null when the referenced product has left the catalog; such a line carries
// a zero subtotal and does not count toward the total.
type LineResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Product   *ProductDetails `json:"product"`
	Size      *string         `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is the resolved cart on the wire.
type CartResponse struct {
	Items []LineResponse  `json:"items"`
	Total decimal.Decimal `json:"total"`
}
