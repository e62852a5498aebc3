package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
)

type memoryStore struct {
	docs      map[uuid.UUID]*Document
	lockCalls int
	saveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[uuid.UUID]*Document{}}
}

func (m *memoryStore) Load(ctx context.Context, userID uuid.UUID) (*Document, error) {
	if doc, ok := m.docs[userID]; ok {
		copied := *doc
		copied.Items = append([]Item(nil), doc.Items...)
		return &copied, nil
	}
	return &Document{Items: []Item{}}, nil
}

func (m *memoryStore) Save(ctx context.Context, userID uuid.UUID, doc *Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[userID] = doc
	return nil
}

func (m *memoryStore) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(m.docs, userID)
	return nil
}

func (m *memoryStore) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	m.lockCalls++
	return fn(ctx)
}

type stubResolver struct {
	products map[uuid.UUID]models.Product
}

func (s *stubResolver) ResolveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func testProduct(name string, price string, sizes map[string]string) models.Product {
	product := models.Product{
		ID:      uuid.New(),
		Name:    name,
		Price:   decimal.RequireFromString(price),
		InStock: true,
	}
	for size, sizePrice := range sizes {
		product.Sizes = append(product.Sizes, models.ProductSize{
			ID:        uuid.New(),
			ProductID: product.ID,
			Size:      size,
			Price:     decimal.RequireFromString(sizePrice),
		})
	}
	return product
}

func newTestService(t *testing.T, products ...models.Product) (Service, *memoryStore, *stubResolver) {
	t.Helper()
	store := newMemoryStore()
	resolver := &stubResolver{products: map[uuid.UUID]models.Product{}}
	for _, product := range products {
		resolver.products[product.ID] = product
	}
	svc, err := NewService(store, resolver, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, resolver
}

func TestAddItemMergesMatchingLine(t *testing.T) {
	product := testProduct("Dark Truffle Box", "10.00", nil)
	svc, store, _ := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	resp, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(resp.Items))
	}
	if resp.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", resp.Items[0].Quantity)
	}
	if store.lockCalls != 2 {
		t.Fatalf("expected 2 lock acquisitions, got %d", store.lockCalls)
	}
}

func TestAddItemDifferentSizesStaySeparate(t *testing.T) {
	product := testProduct("Hazelnut Bar", "10.00", map[string]string{"Large": "15.00"})
	svc, _, _ := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add base: %v", err)
	}
	resp, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Size: strPtr("Large"), Quantity: 1})
	if err != nil {
		t.Fatalf("add sized: %v", err)
	}

	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resp.Items))
	}
	want := decimal.RequireFromString("35.00")
	if !resp.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, resp.Total)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	product := testProduct("Milk Chocolate", "5.00", nil)
	svc, _, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	product := testProduct("Seasonal Pralines", "12.00", nil)
	product.InStock = false
	svc, _, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateItemSetsExactQuantity(t *testing.T) {
	product := testProduct("Dark Truffle Box", "10.00", nil)
	svc, _, _ := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 4}); err != nil {
		t.Fatalf("add: %v", err)
	}
	resp, err := svc.UpdateItem(context.Background(), userID, UpdateItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if resp.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", resp.Items[0].Quantity)
	}
}

func TestUpdateItemMissingLine(t *testing.T) {
	product := testProduct("Dark Truffle Box", "10.00", nil)
	svc, _, _ := newTestService(t, product)

	_, err := svc.UpdateItem(context.Background(), uuid.New(), UpdateItemInput{ProductID: product.ID, Quantity: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	product := testProduct("Dark Truffle Box", "10.00", nil)
	svc, _, _ := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	resp, err := svc.RemoveItem(context.Background(), userID, RemoveItemInput{ProductID: product.ID})
	if err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(resp.Items))
	}

	resp, err = svc.RemoveItem(context.Background(), userID, RemoveItemInput{ProductID: product.ID})
	if err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart after repeated remove, got %d lines", len(resp.Items))
	}
}

func TestRemoveItemMatchesOnSize(t *testing.T) {
	product := testProduct("Hazelnut Bar", "10.00", map[string]string{"Large": "15.00"})
	svc, _, _ := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add base: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Size: strPtr("Large"), Quantity: 1}); err != nil {
		t.Fatalf("add sized: %v", err)
	}

	resp, err := svc.RemoveItem(context.Background(), userID, RemoveItemInput{ProductID: product.ID, Size: strPtr("Large")})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(resp.Items))
	}
	if resp.Items[0].Size != nil {
		t.Fatalf("expected the base-size line to remain")
	}
}

func TestGetKeepsVanishedProductLineWithNullProduct(t *testing.T) {
	product := testProduct("Dark Truffle Box", "10.00", nil)
	svc, store, resolver := newTestService(t, product)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	delete(resolver.products, product.ID)

	resp, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected the line to survive catalog deletion, got %d lines", len(resp.Items))
	}
	line := resp.Items[0]
	if line.Product != nil {
		t.Fatalf("expected null product, got %+v", line.Product)
	}
	if line.ProductID != product.ID || line.Quantity != 2 {
		t.Fatalf("line identity lost: %+v", line)
	}
	if !line.Subtotal.Equal(decimal.Zero) || !resp.Total.Equal(decimal.Zero) {
		t.Fatalf("vanished product must not be priced: subtotal %s, total %s", line.Subtotal, resp.Total)
	}
	if len(store.docs[userID].Items) != 1 {
		t.Fatalf("expected stored line to survive")
	}
}

func TestTotalSkipsVanishedProductButKeepsOthers(t *testing.T) {
	kept := testProduct("Milk Chocolate", "5.00", nil)
	gone := testProduct("Dark Truffle Box", "10.00", nil)
	svc, _, resolver := newTestService(t, kept, gone)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: kept.ID, Quantity: 3}); err != nil {
		t.Fatalf("add kept: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: gone.ID, Quantity: 1}); err != nil {
		t.Fatalf("add gone: %v", err)
	}

	delete(resolver.products, gone.ID)

	resp, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected both lines, got %d", len(resp.Items))
	}
	want := decimal.RequireFromString("15.00")
	if !resp.Total.Equal(want) {
		t.Fatalf("expected total %s from the surviving product only, got %s", want, resp.Total)
	}
}

func TestTotalUsesSizeVariantPrice(t *testing.T) {
	product := testProduct("Hazelnut Bar", "10.00", map[string]string{"Large": "15.00"})
	svc, _, _ := newTestService(t, product)
	userID := uuid.New()

	resp, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Size: strPtr("Large"), Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	want := decimal.RequireFromString("30.00")
	if !resp.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, resp.Total)
	}
	if resp.Items[0].Product == nil || !resp.Items[0].Product.UnitPrice.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected size variant price, got %+v", resp.Items[0].Product)
	}
}
