package dto

import "time"

type AddressRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	AddressLine string `json:"address_line"`
	Ward        string `json:"ward"`
	District    string `json:"district"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Name      string `json:"name"`
	Image     string `json:"image"`
}

// CreateOrderRequest суммы в минимальных единицах валюты; total обязан быть равен subtotal+shipping_fee+tax.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"dive"`
	ShippingAddress AddressRequest     `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	ShippingMethod  string             `json:"shipping_method"`
	Subtotal        int64              `json:"subtotal"`
	ShippingFee     int64              `json:"shipping_fee"`
	Tax             int64              `json:"tax"`
	Total           int64              `json:"total"`
	Note            string             `json:"note"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       int64  `json:"total"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number"`
	Note           *string `json:"note"`
}

type OrderSummaryResponse struct {
	ID             string    `json:"id"`
	OrderNumber    string    `json:"order_number"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	PaymentMethod  string    `json:"payment_method"`
	ShippingMethod string    `json:"shipping_method"`
	ItemCount      int64     `json:"item_count"`
	TotalQuantity  int64     `json:"total_quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderSummaryResponse `json:"orders"`
	Total  int64                  `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

type OrderItemResponse struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image,omitempty"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int32  `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
}

type AddressResponse struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	AddressLine string `json:"address_line"`
	Ward        string `json:"ward,omitempty"`
	District    string `json:"district,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code,omitempty"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          string              `json:"user_id"`
	Status          string              `json:"status"`
	Subtotal        int64               `json:"subtotal"`
	ShippingFee     int64               `json:"shipping_fee"`
	Tax             int64               `json:"tax"`
	Total           int64               `json:"total"`
	ShippingAddress *AddressResponse    `json:"shipping_address,omitempty"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingMethod  string              `json:"shipping_method"`
	Note            string              `json:"note,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	CancelReason    *string             `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Items           []OrderItemResponse `json:"items"`
}

type StatusStatsResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type OrderStatsResponse struct {
	ByStatus    []StatusStatsResponse `json:"by_status"`
	TotalOrders int64                 `json:"total_orders"`
	Revenue     int64                 `json:"revenue"`
}
