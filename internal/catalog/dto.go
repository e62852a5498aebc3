package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
)

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Category string
}

// CreateReviewInput carries a buyer-submitted review.
type CreateReviewInput struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
}

// SizeResponse is a per-size price variant on the wire.
type SizeResponse struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// ReviewResponse is a product review on the wire.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductResponse is the public catalog representation.
type ProductResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category"`
	Image       *string          `json:"image,omitempty"`
	InStock     bool             `json:"inStock"`
	Rating      float64          `json:"rating"`
	Sizes       []SizeResponse   `json:"sizes,omitempty"`
	Reviews     []ReviewResponse `json:"reviews,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ToProductResponse maps a product model onto the wire shape.
func ToProductResponse(product models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Image:       product.Image,
		InStock:     product.InStock,
		Rating:      product.Rating,
		CreatedAt:   product.CreatedAt,
	}
	for _, size := range product.Sizes {
		resp.Sizes = append(resp.Sizes, SizeResponse{Size: size.Size, Price: size.Price})
	}
	for _, review := range product.Reviews {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			ID:        review.ID,
			UserID:    review.UserID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
		})
	}
	return resp
}
