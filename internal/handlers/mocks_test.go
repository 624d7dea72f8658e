package handlers

import (
	"context"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/google/uuid"
)

// MockOrderService
type MockOrderService struct {
	PlaceOrderFunc   func(ctx context.Context, in service.PlaceOrderInput) (*service.PlaceOrderResult, error)
	CancelOrderFunc  func(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	UpdateStatusFunc func(ctx context.Context, in service.UpdateStatusInput) (*models.Order, error)
	ListOrdersFunc   func(ctx context.Context, f service.ListFilter) (*service.OrderPage, error)
	GetOrderFunc     func(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	StatsFunc        func(ctx context.Context) (*service.Stats, error)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*service.PlaceOrderResult, error) {
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, in)
	}
	return &service.PlaceOrderResult{}, nil
}

func (m *MockOrderService) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	if m.CancelOrderFunc != nil {
		return m.CancelOrderFunc(ctx, id, reason)
	}
	return &models.Order{ID: id}, nil
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, in service.UpdateStatusInput) (*models.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, in)
	}
	return &models.Order{ID: in.OrderID, Status: in.Status}, nil
}

func (m *MockOrderService) ListOrders(ctx context.Context, f service.ListFilter) (*service.OrderPage, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, f)
	}
	return &service.OrderPage{}, nil
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return &service.OrderDetail{Order: &models.Order{ID: id}}, nil
}

func (m *MockOrderService) Stats(ctx context.Context) (*service.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &service.Stats{}, nil
}

// MockCartService
type MockCartService struct {
	AddFunc         func(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error)
	SetQuantityFunc func(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error)
	RemoveFunc      func(ctx context.Context, productID uuid.UUID) error
	ClearFunc       func(ctx context.Context) error
	ListFunc        func(ctx context.Context) (*service.Cart, error)
	ValidateFunc    func(ctx context.Context) (*service.CartValidation, error)
}

func (m *MockCartService) Add(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, productID, qty)
	}
	return &models.CartItem{ProductID: productID, Quantity: qty}, nil
}

func (m *MockCartService) SetQuantity(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	if m.SetQuantityFunc != nil {
		return m.SetQuantityFunc(ctx, productID, qty)
	}
	return &models.CartItem{ProductID: productID, Quantity: qty}, nil
}

func (m *MockCartService) Remove(ctx context.Context, productID uuid.UUID) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, productID)
	}
	return nil
}

func (m *MockCartService) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

func (m *MockCartService) List(ctx context.Context) (*service.Cart, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return &service.Cart{}, nil
}

func (m *MockCartService) Validate(ctx context.Context) (*service.CartValidation, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return &service.CartValidation{Valid: true}, nil
}
