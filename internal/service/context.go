package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxUserIDKey ctxKey = "userID"
	ctxRoleKey   ctxKey = "role"
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(uuid.UUID)
	return v, ok && v != uuid.Nil
}

type Role string

const (
	RoleCustomer Role = "ROLE_CUSTOMER"
	RolePartner  Role = "ROLE_PARTNER"
	RoleAdmin    Role = "ROLE_ADMIN"
)

func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ctxRoleKey, r)
}

func RoleFromContext(ctx context.Context) (Role, bool) {
	v, ok := ctx.Value(ctxRoleKey).(Role)
	return v, ok
}

// WithIdentity is a shorthand for WithUserID + WithRole.
func WithIdentity(ctx context.Context, id uuid.UUID, r Role) context.Context {
	return WithRole(WithUserID(ctx, id), r)
}

func requireAuth(ctx context.Context) (uuid.UUID, Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}
	role, ok := RoleFromContext(ctx)
	if !ok || role == "" {
		role = RoleCustomer // если роли нет, считаем customer по умолчанию
	}
	return uid, role, nil
}

func (r Role) isAdmin() bool { return r == RoleAdmin }

// canManageOrders: продвигать заказ по статусам могут admin и partner.
func (r Role) canManageOrders() bool { return r == RoleAdmin || r == RolePartner }
