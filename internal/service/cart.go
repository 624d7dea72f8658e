package service

import (
	"context"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
)

type CartLine struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	UnitPrice int64 // текущая цена товара
	Quantity  int32
	Stock     int32
	IsActive  bool
	LineTotal int64
}

type Cart struct {
	Items         []CartLine
	TotalQuantity int64
	// Subtotal считается по живым ценам и только для активных товаров; носит справочный характер.
	Subtotal int64
}

type CartIssueKind string

const (
	CartIssueNotFound          CartIssueKind = "not_found"
	CartIssueInactive          CartIssueKind = "inactive"
	CartIssueInsufficientStock CartIssueKind = "insufficient_stock"
)

type CartIssue struct {
	ProductID uuid.UUID
	Kind      CartIssueKind
	Requested int32
	Available int32
}

type CartValidation struct {
	Valid  bool
	Issues []CartIssue
}

type CartService interface {
	Add(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error)
	// SetQuantity with qty <= 0 removes the line and returns a nil item.
	SetQuantity(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error)
	Remove(ctx context.Context, productID uuid.UUID) error
	Clear(ctx context.Context) error
	List(ctx context.Context) (*Cart, error)
	Validate(ctx context.Context) (*CartValidation, error)
}
