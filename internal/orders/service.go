package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	"github.com/chocobliss/storefront-backend/pkg/logger"
	"github.com/chocobliss/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the read and admin surfaces of the order store. Order
// creation goes through the checkout orchestrator, not through here.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderResponse, error)
	List(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.FulfillmentStatus) (*OrderResponse, error)
	Refund(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderResponse, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Get loads one order. Customers can only read their own orders; admins can
// read any.
func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderResponse, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	resp := ToOrderResponse(*order)
	return &resp, nil
}

// List returns the actor's order history newest-first. Admins see every
// order; customers see only their own.
func (s *service) List(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	filters := ListFilters{}
	if !actor.IsAdmin() {
		owner := actor.UserID
		filters.UserID = &owner
	}

	rows, nextCursor, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &OrderList{Orders: make([]OrderResponse, 0, len(rows)), NextCursor: nextCursor}
	for _, order := range rows {
		list.Orders = append(list.Orders, ToOrderResponse(order))
	}
	return list, nil
}

// UpdateFulfillment moves an order along the fulfillment path. Admin only;
// the transition must be a legal step from the current status.
func (s *service) UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.FulfillmentStatus) (*OrderResponse, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid fulfillment status %q", next))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !order.FulfillmentStatus.CanTransitionTo(next) {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.FulfillmentStatus, next),
			).WithDetails(map[string]any{
				"current":   order.FulfillmentStatus.String(),
				"requested": next.String(),
			})
		}

		if err := repo.UpdateFulfillmentStatus(ctx, orderID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"status":   next.String(),
		})
		s.logg.Info(logCtx, "orders.fulfillment_updated")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	resp := ToOrderResponse(*order)
	return &resp, nil
}

// Refund marks a paid order as refunded. Admin only; the money movement
// itself happens on the provider's dashboard.
func (s *service) Refund(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderResponse, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot refund an order with payment status %s", order.PaymentStatus),
			).WithDetails(map[string]any{"current": order.PaymentStatus.String()})
		}

		if err := repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusRefunded, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "order_id", orderID.String())
		s.logg.Info(logCtx, "orders.payment_refunded")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	resp := ToOrderResponse(*order)
	return &resp, nil
}
