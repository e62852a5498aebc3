package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders       map[uuid.UUID]*models.Order
	listFilters  *ListFilters
	updateCalls  int
	updateStatus enums.FulfillmentStatus
	refundCalls  int
}

func newStubOrdersRepo(orders ...*models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, *string, error) {
	s.listFilters = &filters
	var rows []models.Order
	for _, order := range s.orders {
		if filters.UserID != nil && order.UserID != *filters.UserID {
			continue
		}
		rows = append(rows, *order)
	}
	return rows, nil, nil
}

func (s *stubOrdersRepo) UpdateFulfillmentStatus(ctx context.Context, id uuid.UUID, status enums.FulfillmentStatus) error {
	s.updateCalls++
	s.updateStatus = status
	if order, ok := s.orders[id]; ok {
		order.FulfillmentStatus = status
	}
	return nil
}

func (s *stubOrdersRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string) error {
	s.refundCalls++
	if order, ok := s.orders[id]; ok {
		order.PaymentStatus = status
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testOrder(userID uuid.UUID, status enums.FulfillmentStatus) *models.Order {
	return &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		TotalAmount:       decimal.RequireFromString("35.00"),
		PaymentMethod:     enums.PaymentMethodRazorpay,
		PaymentStatus:     enums.PaymentStatusPaid,
		FulfillmentStatus: status,
	}
}

func newOrdersService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetOwnerCanRead(t *testing.T) {
	ownerID := uuid.New()
	order := testOrder(ownerID, enums.FulfillmentStatusPending)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	resp, err := svc.Get(context.Background(), Actor{UserID: ownerID, Role: enums.UserRoleCustomer}, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, resp.ID)
	}
}

func TestGetStrangerIsForbidden(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	_, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetAdminCanReadAnyOrder(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	resp, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, order.ID)
	if err != nil {
		t.Fatalf("get as admin: %v", err)
	}
	if resp.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, resp.ID)
	}
}

func TestGetUnknownOrder(t *testing.T) {
	svc := newOrdersService(t, newStubOrdersRepo())

	_, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCustomerScopedToOwnOrders(t *testing.T) {
	ownerID := uuid.New()
	repo := newStubOrdersRepo(
		testOrder(ownerID, enums.FulfillmentStatusPending),
		testOrder(uuid.New(), enums.FulfillmentStatusPending),
	)
	svc := newOrdersService(t, repo)

	list, err := svc.List(context.Background(), Actor{UserID: ownerID, Role: enums.UserRoleCustomer}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(list.Orders))
	}
	if repo.listFilters == nil || repo.listFilters.UserID == nil || *repo.listFilters.UserID != ownerID {
		t.Fatalf("expected owner filter applied, got %+v", repo.listFilters)
	}
}

func TestListAdminSeesAllOrders(t *testing.T) {
	repo := newStubOrdersRepo(
		testOrder(uuid.New(), enums.FulfillmentStatusPending),
		testOrder(uuid.New(), enums.FulfillmentStatusShipped),
	)
	svc := newOrdersService(t, repo)

	list, err := svc.List(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list.Orders))
	}
	if repo.listFilters == nil || repo.listFilters.UserID != nil {
		t.Fatalf("expected no owner filter for admin, got %+v", repo.listFilters)
	}
}

func TestUpdateFulfillmentLegalStep(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	repo := newStubOrdersRepo(order)
	svc := newOrdersService(t, repo)

	resp, err := svc.UpdateFulfillment(
		context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
		order.ID,
		enums.FulfillmentStatusProcessing,
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.FulfillmentStatus != enums.FulfillmentStatusProcessing {
		t.Fatalf("expected processing, got %s", resp.FulfillmentStatus)
	}
	if repo.updateCalls != 1 {
		t.Fatalf("expected 1 update, got %d", repo.updateCalls)
	}
}

func TestUpdateFulfillmentIllegalStep(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	repo := newStubOrdersRepo(order)
	svc := newOrdersService(t, repo)

	_, err := svc.UpdateFulfillment(
		context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
		order.ID,
		enums.FulfillmentStatusDelivered,
	)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no update on illegal transition")
	}
}

func TestUpdateFulfillmentTerminalOrder(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusDelivered)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	_, err := svc.UpdateFulfillment(
		context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
		order.ID,
		enums.FulfillmentStatusCancelled,
	)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for terminal order, got %v", err)
	}
}

func TestUpdateFulfillmentRequiresAdmin(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	_, err := svc.UpdateFulfillment(
		context.Background(),
		Actor{UserID: order.UserID, Role: enums.UserRoleCustomer},
		order.ID,
		enums.FulfillmentStatusProcessing,
	)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRefundPaidOrder(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	repo := newStubOrdersRepo(order)
	svc := newOrdersService(t, repo)

	resp, err := svc.Refund(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, order.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if resp.PaymentStatus != enums.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", resp.PaymentStatus)
	}
	if repo.refundCalls != 1 {
		t.Fatalf("expected 1 payment status update, got %d", repo.refundCalls)
	}
}

func TestRefundRequiresAdmin(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	_, err := svc.Refund(context.Background(), Actor{UserID: order.UserID, Role: enums.UserRoleCustomer}, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRefundUnpaidOrder(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusPending)
	order.PaymentStatus = enums.PaymentStatusPending
	repo := newStubOrdersRepo(order)
	svc := newOrdersService(t, repo)

	_, err := svc.Refund(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.refundCalls != 0 {
		t.Fatalf("expected no payment status update")
	}
}

func TestUpdateFulfillmentCancelFromProcessing(t *testing.T) {
	order := testOrder(uuid.New(), enums.FulfillmentStatusProcessing)
	svc := newOrdersService(t, newStubOrdersRepo(order))

	resp, err := svc.UpdateFulfillment(
		context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
		order.ID,
		enums.FulfillmentStatusCancelled,
	)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.FulfillmentStatus != enums.FulfillmentStatusCancelled {
		t.Fatalf("expected cancelled, got %s", resp.FulfillmentStatus)
	}
}
