package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/chocobliss/storefront-backend/api/middleware"
	"github.com/chocobliss/storefront-backend/internal/orders"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	pkgerrors "github.com/chocobliss/storefront-backend/pkg/errors"
)

// actorFromContext rebuilds the authenticated actor seeded by the auth
// middleware.
func actorFromContext(ctx context.Context) (orders.Actor, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}

	return orders.Actor{UserID: userID, Role: role}, nil
}

// userIDFromContext returns just the authenticated user id.
func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.UserID, nil
}
