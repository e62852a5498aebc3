package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/logger"
)

// ProductResolver loads catalog products for cart hydration.
type ProductResolver interface {
	ResolveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service owns the stored cart and its catalog-joined representation.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error)
	Items(ctx context.Context, userID uuid.UUID) ([]Item, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartResponse, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartResponse, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, input RemoveItemInput) (*CartResponse, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store    Store
	products ProductResolver
	logg     *logger.Logger
}

// NewService builds the cart service with the required dependencies.
func NewService(store Store, products ProductResolver, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &service{store: store, products: products, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.resolve(ctx, doc)
}

// Items returns the raw stored lines without catalog hydration.
func (s *service) Items(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return doc.Items, nil
}

// AddItem merges the line into the cart under the user's mutation lock. A
// line with the same (product, size) accumulates quantity; otherwise a new
// line is appended.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	resolved, err := s.products.ResolveProducts(ctx, []uuid.UUID{input.ProductID})
	if err != nil {
		return nil, err
	}
	product, ok := resolved[input.ProductID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	return s.mutate(ctx, userID, func(doc *Document) error {
		for i := range doc.Items {
			if sameLine(doc.Items[i], input.ProductID, input.Size) {
				doc.Items[i].Quantity += input.Quantity
				return nil
			}
		}
		doc.Items = append(doc.Items, Item{
			ProductID: input.ProductID,
			Size:      normalizeSize(input.Size),
			Quantity:  input.Quantity,
		})
		return nil
	})
}

// UpdateItem sets the exact quantity of an existing line.
func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	return s.mutate(ctx, userID, func(doc *Document) error {
		for i := range doc.Items {
			if sameLine(doc.Items[i], input.ProductID, input.Size) {
				doc.Items[i].Quantity = input.Quantity
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	})
}

// RemoveItem drops the matching line. Removing a line that is not present is
// a no-op.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, input RemoveItemInput) (*CartResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	return s.mutate(ctx, userID, func(doc *Document) error {
		kept := doc.Items[:0]
		for _, item := range doc.Items {
			if !sameLine(item, input.ProductID, input.Size) {
				kept = append(kept, item)
			}
		}
		doc.Items = kept
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// mutate runs a read-modify-write cycle under the user's lock and returns the
// hydrated result.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, apply func(doc *Document) error) (*CartResponse, error) {
	var doc *Document
	err := s.store.WithUserLock(ctx, userID, func(ctx context.Context) error {
		loaded, err := s.store.Load(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := apply(loaded); err != nil {
			return err
		}
		if err := s.store.Save(ctx, userID, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		doc = loaded
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart mutation failed")
	}
	return s.resolve(ctx, doc)
}

// resolve joins stored lines against the live catalog. A line whose product
// has been removed from the catalog is kept with a null product and a zero
// subtotal; it does not count toward the total.
func (s *service) resolve(ctx context.Context, doc *Document) (*CartResponse, error) {
	ids := make([]uuid.UUID, 0, len(doc.Items))
	for _, item := range doc.Items {
		ids = append(ids, item.ProductID)
	}

	byID, err := s.products.ResolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &CartResponse{Items: []LineResponse{}, Total: decimal.Zero}
	for _, item := range doc.Items {
		line := LineResponse{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Subtotal:  decimal.Zero,
		}
		if product, ok := byID[item.ProductID]; ok {
			unitPrice := product.EffectivePrice(item.Size)
			line.Subtotal = unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.Product = &ProductDetails{
				Name:      product.Name,
				Image:     product.Image,
				UnitPrice: unitPrice,
				InStock:   product.InStock,
			}
			resp.Total = resp.Total.Add(line.Subtotal)
		}
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}

func sameLine(item Item, productID uuid.UUID, size *string) bool {
	if item.ProductID != productID {
		return false
	}
	return sizeValue(item.Size) == sizeValue(size)
}

func sizeValue(size *string) string {
	if size == nil {
		return ""
	}
	return *size
}

func normalizeSize(size *string) *string {
	if size == nil || *size == "" {
		return nil
	}
	return size
}
