package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
)

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.Product
	reviews  []*models.Review

	refreshCalls int
	listFilters  *ListFilters
}

func newStubCatalogRepo(products ...*models.Product) *stubCatalogRepo {
	repo := &stubCatalogRepo{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		repo.products[product.ID] = product
	}
	return repo
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	s.listFilters = &filters
	var out []models.Product
	for _, product := range s.products {
		if filters.Category != "" && product.Category != filters.Category {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *stubCatalogRepo) RefreshRating(ctx context.Context, productID uuid.UUID) error {
	s.refreshCalls++
	var sum, count int
	for _, review := range s.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	if product, ok := s.products[productID]; ok && count > 0 {
		product.Rating = float64(sum) / float64(count)
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newCatalogService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func sampleProduct(category string) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Dark Truffle Box",
		Price:    decimal.RequireFromString("10.00"),
		Category: category,
		InStock:  true,
	}
}

func TestListProductsFiltersByCategory(t *testing.T) {
	repo := newStubCatalogRepo(sampleProduct("dark"), sampleProduct("milk"))
	svc := newCatalogService(t, repo)

	products, err := svc.ListProducts(context.Background(), ListFilters{Category: "dark"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if repo.listFilters.Category != "dark" {
		t.Fatalf("filter not forwarded: %+v", repo.listFilters)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc := newCatalogService(t, newStubCatalogRepo())

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveProductsDeduplicates(t *testing.T) {
	product := sampleProduct("dark")
	svc := newCatalogService(t, newStubCatalogRepo(product))

	byID, err := svc.ResolveProducts(context.Background(), []uuid.UUID{product.ID, product.ID, uuid.Nil})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(byID) != 1 {
		t.Fatalf("expected 1 resolved product, got %d", len(byID))
	}
}

func TestAddReviewRefreshesRating(t *testing.T) {
	product := sampleProduct("dark")
	repo := newStubCatalogRepo(product)
	svc := newCatalogService(t, repo)
	userID := uuid.New()

	if _, err := svc.AddReview(context.Background(), CreateReviewInput{
		ProductID: product.ID, UserID: userID, Rating: 5, Comment: "superb",
	}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	resp, err := svc.AddReview(context.Background(), CreateReviewInput{
		ProductID: product.ID, UserID: uuid.New(), Rating: 3, Comment: "fine",
	})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}

	if repo.refreshCalls != 2 {
		t.Fatalf("expected rating refreshed per review, got %d", repo.refreshCalls)
	}
	if resp.Rating != 4.0 {
		t.Fatalf("expected average rating 4.0, got %v", resp.Rating)
	}
}

func TestAddReviewRatingBounds(t *testing.T) {
	product := sampleProduct("dark")
	svc := newCatalogService(t, newStubCatalogRepo(product))

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.AddReview(context.Background(), CreateReviewInput{
			ProductID: product.ID, UserID: uuid.New(), Rating: rating, Comment: "x",
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}
}

func TestAddReviewUnknownProduct(t *testing.T) {
	svc := newCatalogService(t, newStubCatalogRepo())

	_, err := svc.AddReview(context.Background(), CreateReviewInput{
		ProductID: uuid.New(), UserID: uuid.New(), Rating: 4, Comment: "x",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
