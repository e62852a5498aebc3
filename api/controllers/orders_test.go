package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ordersvc "github.com/chocobliss/storefront-backend/internal/orders"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/pagination"
)

type stubOrderService struct {
	order     *ordersvc.OrderResponse
	list      *ordersvc.OrderList
	err       error
	gotActor  *ordersvc.Actor
	gotStatus enums.FulfillmentStatus
}

func (s *stubOrderService) Get(ctx context.Context, actor ordersvc.Actor, orderID uuid.UUID) (*ordersvc.OrderResponse, error) {
	s.gotActor = &actor
	return s.order, s.err
}

func (s *stubOrderService) List(ctx context.Context, actor ordersvc.Actor, params pagination.Params) (*ordersvc.OrderList, error) {
	s.gotActor = &actor
	return s.list, s.err
}

func (s *stubOrderService) UpdateFulfillment(ctx context.Context, actor ordersvc.Actor, orderID uuid.UUID, next enums.FulfillmentStatus) (*ordersvc.OrderResponse, error) {
	s.gotActor = &actor
	s.gotStatus = next
	return s.order, s.err
}

func (s *stubOrderService) Refund(ctx context.Context, actor ordersvc.Actor, orderID uuid.UUID) (*ordersvc.OrderResponse, error) {
	s.gotActor = &actor
	return s.order, s.err
}

func withOrderParam(req *http.Request, orderID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderGetForbidden(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")}
	handler := OrderGet(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, enums.UserRoleCustomer)
	req = withOrderParam(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestOrderGetInvalidID(t *testing.T) {
	handler := OrderGet(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil, enums.UserRoleCustomer)
	req = withOrderParam(req, "not-a-uuid")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderListPassesPagination(t *testing.T) {
	svc := &stubOrderService{list: &ordersvc.OrderList{Orders: []ordersvc.OrderResponse{}}}
	handler := OrderList(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders?limit=5&cursor=abc", nil, enums.UserRoleAdmin)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.gotActor == nil || svc.gotActor.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin actor, got %+v", svc.gotActor)
	}
}

func TestOrderListRejectsBadLimit(t *testing.T) {
	handler := OrderList(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders?limit=lots", nil, enums.UserRoleCustomer)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderFulfillmentUpdateIllegalTransition(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from pending to delivered")}
	handler := OrderFulfillmentUpdate(svc, nil)

	body, _ := json.Marshal(map[string]string{"status": "delivered"})
	req := authedRequest(http.MethodPut, "/api/v1/orders/x/status", body, enums.UserRoleAdmin)
	req = withOrderParam(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code, got %s", code)
	}
}

func TestOrderFulfillmentUpdateUnknownStatus(t *testing.T) {
	handler := OrderFulfillmentUpdate(&stubOrderService{}, nil)

	body, _ := json.Marshal(map[string]string{"status": "teleported"})
	req := authedRequest(http.MethodPut, "/api/v1/orders/x/status", body, enums.UserRoleAdmin)
	req = withOrderParam(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderFulfillmentUpdateSuccess(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{order: &ordersvc.OrderResponse{ID: orderID, FulfillmentStatus: enums.FulfillmentStatusProcessing}}
	handler := OrderFulfillmentUpdate(svc, nil)

	body, _ := json.Marshal(map[string]string{"status": "processing"})
	req := authedRequest(http.MethodPut, "/api/v1/orders/x/status", body, enums.UserRoleAdmin)
	req = withOrderParam(req, orderID.String())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.gotStatus != enums.FulfillmentStatusProcessing {
		t.Fatalf("expected processing passed through, got %s", svc.gotStatus)
	}
}

func TestOrderRefundSuccess(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{order: &ordersvc.OrderResponse{ID: orderID, PaymentStatus: enums.PaymentStatusRefunded}}
	handler := OrderRefund(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/x/refund", nil, enums.UserRoleAdmin)
	req = withOrderParam(req, orderID.String())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.gotActor == nil || svc.gotActor.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin actor forwarded, got %+v", svc.gotActor)
	}
}

func TestOrderRefundUnpaidOrder(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot refund an order with payment status pending")}
	handler := OrderRefund(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/x/refund", nil, enums.UserRoleAdmin)
	req = withOrderParam(req, uuid.NewString())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%s)", rec.Code, rec.Body.String())
	}
}
