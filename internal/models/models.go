package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is owned by the catalog; this service only reads it and moves stock.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string    `gorm:"type:text;not null"`
	Image    string    `gorm:"type:text"`
	Price    int64     `gorm:"not null;default:0"`
	Stock    int32     `gorm:"not null;default:0"` // CHECK (stock >= 0) в миграции
	IsActive bool      `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_items_user_product"`
	Quantity  int32     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (CartItem) TableName() string { return "cart_items" }

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderTransitions[st]
	return st, ok
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// SourcesFor lists every status from which next is reachable in one step.
func SourcesFor(next OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, from := range AllOrderStatuses() {
		if from.CanTransitionTo(next) {
			out = append(out, from)
		}
	}
	return out
}

func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusProcessing, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled}
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentBank PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentBank:
		return true
	}
	return false
}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress:
		return true
	}
	return false
}

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string      `gorm:"type:text;not null;uniqueIndex:ux_orders_order_number"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status      OrderStatus `gorm:"type:text;not null;default:'processing';index"`

	Subtotal    int64 `gorm:"not null;default:0"`
	ShippingFee int64 `gorm:"not null;default:0"`
	Tax         int64 `gorm:"not null;default:0"`
	Total       int64 `gorm:"not null;default:0"` // CHECK total = subtotal + shipping_fee + tax

	ShippingAddress string         `gorm:"type:jsonb;not null"`
	PaymentMethod   PaymentMethod  `gorm:"type:text;not null"`
	ShippingMethod  ShippingMethod `gorm:"type:text;not null"`
	Note            string         `gorm:"type:text;not null;default:''"`
	TrackingNumber  *string        `gorm:"type:text"`
	CancelReason    *string        `gorm:"type:text"`
	CancelledAt     *time.Time

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is a purchase-time snapshot; product_id is deliberately not a foreign key.
type OrderItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_product"`
	Position     int32     `gorm:"not null;default:0"` // порядок строки в заказе
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductName  string    `gorm:"type:text;not null"`
	ProductImage string    `gorm:"type:text;not null;default:''"`
	UnitPrice    int64     `gorm:"not null"`
	Quantity     int32     `gorm:"not null"`
	LineTotal    int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }
