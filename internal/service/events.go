package service

import (
	"context"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderItemEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

type OrderCreatedEvent struct {
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      uuid.UUID        `json:"user_id"`
	Items       []OrderItemEvent `json:"items"`
	Total       int64            `json:"total"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      uuid.UUID        `json:"user_id"`
	Reason      string           `json:"reason,omitempty"`
	Restocked   []OrderItemEvent `json:"restocked"`
	CancelledAt time.Time        `json:"cancelled_at"`
}

type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID          `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	UserID         uuid.UUID          `json:"user_id"`
	From           models.OrderStatus `json:"from"`
	To             models.OrderStatus `json:"to"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	ChangedAt      time.Time          `json:"changed_at"`
}

// EventBus receives order events after the owning transaction has committed.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}

func itemEvents(items []models.OrderItem) []OrderItemEvent {
	out := make([]OrderItemEvent, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemEvent{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return out
}
