package service

import (
	"context"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const statsScopeAll = "all"

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) (*OrderPage, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !role.isAdmin() {
		f.UserID = &userID
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid("status", "unknown status %q", *f.Status)
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}

	rows, total, err := s.store.Orders().List(ctx, repository.OrderListFilter{
		UserID: f.UserID,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: (f.Page - 1) * f.Limit,
	})
	if err != nil {
		return nil, err
	}

	page := &OrderPage{
		Orders: make([]OrderSummary, 0, len(rows)),
		Total:  total,
		Page:   f.Page,
		Limit:  f.Limit,
	}
	for _, r := range rows {
		o := r.Order
		page.Orders = append(page.Orders, OrderSummary{
			ID:             o.ID,
			OrderNumber:    o.OrderNumber,
			UserID:         o.UserID,
			Status:         o.Status,
			Total:          o.Total,
			PaymentMethod:  o.PaymentMethod,
			ShippingMethod: o.ShippingMethod,
			ItemCount:      r.ItemCount,
			TotalQuantity:  r.TotalQuantity,
			CreatedAt:      o.CreatedAt,
		})
	}
	return page, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.loadOrder(ctx, s.store, id, userID, role)
	if err != nil {
		return nil, err
	}
	addr, err := decodeAddress(o.ShippingAddress)
	if err != nil {
		// битый снимок адреса не должен прятать сам заказ
		s.log.Warn("Не удалось разобрать адрес доставки", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	return &OrderDetail{Order: o, Address: addr}, nil
}

func (s *orderService) Stats(ctx context.Context) (*Stats, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	scope := userID.String()
	filter := &userID
	if role.isAdmin() {
		scope, filter = statsScopeAll, nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetStats(ctx, scope)
		if err != nil {
			s.log.Warn("Кэш статистики недоступен", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	rows, err := s.store.Orders().Stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	st := buildStats(rows)

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, scope, st); err != nil {
			s.log.Warn("Не удалось сохранить статистику в кэш", zap.Error(err))
		}
	}
	return st, nil
}

// buildStats reports every status, including ones with no orders.
func buildStats(rows []repository.StatusStat) *Stats {
	byStatus := make(map[models.OrderStatus]repository.StatusStat, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}
	st := &Stats{}
	for _, status := range models.AllOrderStatuses() {
		r := byStatus[status]
		st.ByStatus = append(st.ByStatus, StatusStats{Status: status, Count: r.Count, Amount: r.Amount})
		st.TotalOrders += r.Count
		if status != models.OrderStatusCancelled {
			st.Revenue += r.Amount
		}
	}
	return st
}
