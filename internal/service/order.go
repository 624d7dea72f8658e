package service

import (
	"context"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64 // цена на момент оформления, присланная клиентом
	Name      string
	Image     string
}

type Address struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	AddressLine string `json:"address_line"`
	Ward        string `json:"ward,omitempty"`
	District    string `json:"district,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code,omitempty"`
}

type PlaceOrderInput struct {
	Items           []LineItemInput
	ShippingAddress Address
	PaymentMethod   models.PaymentMethod
	ShippingMethod  models.ShippingMethod
	Subtotal        int64
	ShippingFee     int64
	Tax             int64
	Total           int64
	Note            string
}

type PlaceOrderResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Total       int64
}

type UpdateStatusInput struct {
	OrderID        uuid.UUID
	Status         models.OrderStatus
	TrackingNumber *string
	Note           *string
}

type ListFilter struct {
	UserID *uuid.UUID // учитывается только для admin
	Status *models.OrderStatus
	Page   int
	Limit  int
}

type OrderSummary struct {
	ID             uuid.UUID
	OrderNumber    string
	UserID         uuid.UUID
	Status         models.OrderStatus
	Total          int64
	PaymentMethod  models.PaymentMethod
	ShippingMethod models.ShippingMethod
	ItemCount      int64
	TotalQuantity  int64
	CreatedAt      time.Time
}

type OrderPage struct {
	Orders []OrderSummary
	Total  int64
	Page   int
	Limit  int
}

type OrderDetail struct {
	Order   *models.Order
	Address Address
}

type StatusStats struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
	Amount int64              `json:"amount"`
}

type Stats struct {
	ByStatus    []StatusStats `json:"by_status"`
	TotalOrders int64         `json:"total_orders"`
	// Revenue: сумма total по всем заказам, кроме отменённых.
	Revenue int64 `json:"revenue"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error)
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) (*OrderPage, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	Stats(ctx context.Context) (*Stats, error)
}

// StatsCache stores computed statistics per scope ("all" or a user id).
type StatsCache interface {
	GetStats(ctx context.Context, scope string) (*Stats, bool, error)
	SetStats(ctx context.Context, scope string, s *Stats) error
	InvalidateStats(ctx context.Context, scopes ...string) error
}
